package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("parse error")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")

	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
	ErrModNotFound  = fmt.Errorf("mod %w", ErrNotFound)
)

// ParseError reports a malformed profile or settings file.
type ParseError struct {
	Path string
	Line int // 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

// Unwrap lets errors.Is match both ErrParse and the underlying decoder error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
