package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeUnknown is returned when the remote object does not report
	// its length.
	ErrSizeUnknown = errors.New("transfer: remote size unknown")

	// ErrSizeMismatch is returned when a range read ends before the
	// expected number of bytes arrived. The partial file is kept.
	ErrSizeMismatch = errors.New("transfer: size mismatch")

	// ErrObjectNotFound is returned when the remote object does not exist.
	ErrObjectNotFound = errors.New("transfer: object not found")
)

// Error describes a failed step of a task.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Output string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer %s s3://%s/%s -> %s: %v", e.Op, e.Bucket, e.Key, e.Output, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
