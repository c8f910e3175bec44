package job

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already exists")
)

type ErrPageOutOfRange struct {
	error
}

func NewErrPageOutOfRange(page, size int) *ErrPageOutOfRange {
	return &ErrPageOutOfRange{fmt.Errorf("page %d out of range [0, %d)", page, size)}
}
