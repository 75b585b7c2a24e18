package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Test with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrParse      = errors.New("parse error")
)

// Error is a domain error carrying one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds an ErrNotFound error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds an ErrConflict error.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Invalid builds an ErrValidation error.
func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a roster cell that could not be read.
type ParseError struct {
	Row    int // 1-based, header is row 1
	Column int // 0-based column index, -1 when the whole row is at fault
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("row %d", e.Row)
	if e.Column >= 0 {
		msg += fmt.Sprintf(", column %d", e.Column)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }
