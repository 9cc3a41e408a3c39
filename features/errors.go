package features

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing file, directory, or stored record. Callers
// classify it with errors.Is; the wrapping error carries the path or id.
var ErrNotFound = errors.New("not found")

// DecodeError reports corrupt or unsupported audio content. It is terminal
// for single-file extraction and converted to a skip-and-continue failure by
// the batch pipeline.
type DecodeError struct {
	Name string // source filename, best effort
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StorageError reports a persistence failure. A StorageError from a batch
// commit means the whole pending batch rolled back; nothing partially
// persists.
type StorageError struct {
	Op  string // the store operation that failed
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
