package reslib

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors.
var (
	// ErrInvalidPath is returned when a path contains a reserved character.
	ErrInvalidPath = errors.New("reslib: invalid path")

	// ErrFormat is returned when archive bytes are malformed or truncated.
	ErrFormat = errors.New("reslib: invalid archive format")

	// ErrNotFound is returned when a path is not staged or not archived.
	ErrNotFound = fmt.Errorf("reslib: resource not found: %w", fs.ErrNotExist)

	// ErrCodec is returned when compression or decompression fails.
	ErrCodec = errors.New("reslib: codec failure")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("reslib: size overflow")

	// ErrIndexSizeChanged is returned by Flush when the final index does not
	// encode to the same length as the placeholder written before the data.
	ErrIndexSizeChanged = errors.New("reslib: index size changed during flush")
)

// FormatError describes where an archive failed to parse.
type FormatError struct {
	// Offset is the byte position in the underlying file or stream, so an
	// archive embedded at a non-zero position reports absolute offsets.
	Offset int64
	// Reason is a short description of the problem.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := "reslib: invalid archive format: " + e.Reason
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(offset int64, cause error, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...), Err: cause}
}
