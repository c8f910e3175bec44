package storage

import (
	"context"
	"io"
)

// Storage gives access to the files written by pcap jobs.
type Storage interface {
	Exists(ctx context.Context, locator string) (bool, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
	Type() string
}
