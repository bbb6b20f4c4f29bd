package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage marks a file no scanner can handle
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrMalformedInput marks byte runs the scanner had to skip
	ErrMalformedInput = errors.New("malformed input")
	// ErrResourceExceeded marks a file or archive over its size or time budget
	ErrResourceExceeded = errors.New("resource exceeded")
	// ErrInternalInconsistency means a report invariant was violated. It is a defect.
	ErrInternalInconsistency = errors.New("internal inconsistency")
	// ErrEmptySubmission is returned when nothing was submitted
	ErrEmptySubmission = errors.New("empty submission")
	// ErrNoAnalyzableFiles is returned when every submitted file was skipped
	ErrNoAnalyzableFiles = errors.New("no analyzable files")
)

// FileError attaches a file path and operation to a per-file failure
type FileError struct {
	Path string
	Op   string
	Err  error
}

// NewFileError creates a new file error
func NewFileError(path, op string, err error) *FileError {
	return &FileError{Path: path, Op: op, Err: err}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FileError) Unwrap() error {
	return e.Err
}

// SkipReasonFor maps a per-file error onto a skip reason
func SkipReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedLanguage):
		return SkipUnsupportedLanguage
	case errors.Is(err, ErrMalformedInput):
		return SkipMalformed
	}
	return SkipResourceExceeded
}
