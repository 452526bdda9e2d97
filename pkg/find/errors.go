package find

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// ParseError represents an error encountered while turning the command-line
// expression into a matcher tree. It carries the offending token and its
// position so the diagnostic can cite the argument.
type ParseError struct {
	Token    string
	Position int
	Reason   string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return e.Reason
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (argument %d: %s): %v", e.Reason, e.Position, e.Token, e.Cause)
	}
	return fmt.Sprintf("%s (argument %d: %s)", e.Reason, e.Position, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func parseErrorf(position int, token, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Token:    token,
		Position: position,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// WalkError represents a per-entry failure during traversal: a stat that
// could not complete, a directory that could not be read, or a symlink loop.
type WalkError struct {
	Path  string
	Cause error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

func (e *WalkError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a does-not-exist failure.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsLoop reports whether err is a symlink-loop failure (ELOOP).
func IsLoop(err error) bool {
	return errors.Is(err, unix.ELOOP)
}
