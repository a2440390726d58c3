// File: core/socket/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package socket

import (
	"errors"
	"syscall"
)

// Error is an OS-level socket failure. It unwraps to the errno, so
// errors.Is(err, unix.EADDRINUSE) works.
type Error struct {
	Op   string // "socket", "bind", "mcast_join", ...
	Addr string // address involved, if any
	Err  error
}

func newError(op, addr string, err error) *Error {
	return &Error{Op: op, Addr: addr, Err: err}
}

func (e *Error) Error() string {
	if e.Addr == "" {
		return "socket " + e.Op + ": " + e.Err.Error()
	}
	return "socket " + e.Op + " " + e.Addr + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Errno extracts the OS error code, or 0 when the cause is not an errno.
func (e *Error) Errno() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}
