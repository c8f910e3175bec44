package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalStorage reads locators as paths below a root directory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (l *LocalStorage) path(locator string) string {
	return filepath.Join(l.root, filepath.Clean("/"+locator))
}

func (l *LocalStorage) Exists(_ context.Context, locator string) (bool, error) {
	info, err := os.Stat(l.path(locator))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat %s", locator)
	}
	return !info.IsDir(), nil
}

func (l *LocalStorage) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(locator))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", locator)
	}
	return f, nil
}

func (l *LocalStorage) Type() string {
	return "local"
}
