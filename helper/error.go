package helper

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying failures at the request boundary.
// Callers discriminate with errors.Is.
var (
	// ErrEncoding marks text encoder failures; these abort the whole request.
	ErrEncoding = errors.New("encoding failure")
	// ErrIndex marks vector index failures. Search failures abort the
	// request; reconstruction failures inside the edge builder are
	// handled as per-id skips and never carry this error outward.
	ErrIndex = errors.New("index failure")
	// ErrMetadata marks metadata store failures; these abort the request.
	ErrMetadata = errors.New("metadata failure")
	// ErrConfig marks invalid configuration detected at startup.
	ErrConfig = errors.New("configuration error")
)

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%v in %v: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("error in %v: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind sentinels in addition to the wrapped error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// NewError creates a new unclassified error with operation context.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// NewEncodingError creates an encoder failure error.
func NewEncodingError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrEncoding, Err: err}
}

// NewIndexError creates a vector index failure error.
func NewIndexError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrIndex, Err: err}
}

// NewMetadataError creates a metadata store failure error.
func NewMetadataError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrMetadata, Err: err}
}

// NewConfigError creates a configuration error.
func NewConfigError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrConfig, Err: err}
}
