// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-evio.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrAlloc is returned when a native resource factory yields nothing.
	// It is the out-of-memory class and is never retried internally.
	ErrAlloc = errors.New("native resource allocation failed")

	ErrLoopClosed     = errors.New("event loop is closed")
	ErrLoopNotRunning = errors.New("event loop is not running")
	ErrInvalidSocket  = errors.New("invalid socket")
	ErrNotSupported   = errors.New("operation not supported")
	ErrNotRegistered  = errors.New("descriptor not registered")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrFreed          = errors.New("resource already released")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	// ErrCodeAlloc marks a factory that produced no resource.
	ErrCodeAlloc ErrorCode = iota + 1
)

// Error represents a structured error with a code and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}
