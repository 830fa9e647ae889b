package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFiles rejects a request that carries no items. It is the only
	// error that aborts a batch.
	ErrNoFiles = errors.New("at least one file must be provided")

	// Per-item failure kinds
	ErrExtensionNotAllowed = errors.New("file type not allowed")
	ErrItemIO              = errors.New("failed to store file")
	ErrItemPanic           = errors.New("unexpected failure while processing file")
)

// ItemError describes why a single item failed. Kind is one of the per-item
// sentinels, Err carries the underlying cause.
type ItemError struct {
	Filename string
	Kind     error
	Err      error
}

func (e *ItemError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ItemError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func extensionError(filename, ext string) *ItemError {
	if ext == "" {
		ext = "(none)"
	}
	return &ItemError{
		Filename: filename,
		Kind:     ErrExtensionNotAllowed,
		Err:      fmt.Errorf("file type %s not allowed", ext),
	}
}

func ioError(filename string, err error) *ItemError {
	return &ItemError{Filename: filename, Kind: ErrItemIO, Err: err}
}

func panicError(filename string, v any) *ItemError {
	return &ItemError{
		Filename: filename,
		Kind:     ErrItemPanic,
		Err:      fmt.Errorf("%w: %v", ErrItemPanic, v),
	}
}
