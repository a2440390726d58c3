// File: core/socket/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket exclusively owns one OS descriptor. It carries no locking: share it
// across goroutines by funneling its use through one loop thread.

package socket

import (
	"fmt"

	"github.com/momentics/hioload-evio/api"
)

// ErrInvalid is returned by operations on an invalid (empty or moved-from) socket.
var ErrInvalid = api.ErrInvalidSocket

// noCopy trips go vet's copylocks check when a Socket is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Socket owns a descriptor or is invalid. The zero value is invalid.
type Socket struct {
	_  noCopy
	fd int
	ok bool
}

// New returns an invalid socket, a placeholder for later assignment.
func New() *Socket { return &Socket{fd: -1} }

// FromFD takes ownership of an open descriptor. fd must not be owned elsewhere.
func FromFD(fd int) *Socket {
	if fd < 0 {
		return New()
	}
	return &Socket{fd: fd, ok: true}
}

// Valid reports whether the socket owns a descriptor.
func (s *Socket) Valid() bool { return s != nil && s.ok }

// FD returns the descriptor, or -1 when invalid.
func (s *Socket) FD() int {
	if !s.Valid() {
		return -1
	}
	return s.fd
}

// Take moves ownership into a new Socket and leaves s invalid.
func (s *Socket) Take() *Socket {
	if !s.Valid() {
		return New()
	}
	out := &Socket{fd: s.fd, ok: true}
	s.fd, s.ok = -1, false
	return out
}

// Replace closes the current descriptor, if any, and takes ownership of src.
func (s *Socket) Replace(src *Socket) error {
	if s == src {
		return nil
	}
	err := s.Close()
	if src.Valid() {
		s.fd, s.ok = src.fd, true
		src.fd, src.ok = -1, false
	}
	return err
}

// Release gives up ownership without closing and returns the descriptor.
func (s *Socket) Release() int {
	fd := s.FD()
	s.fd, s.ok = -1, false
	return fd
}

// Close closes the descriptor exactly once; closing an invalid socket is a no-op.
func (s *Socket) Close() error {
	if !s.Valid() {
		return nil
	}
	fd := s.fd
	s.fd, s.ok = -1, false
	if err := closeFD(fd); err != nil {
		return newError("close", "", err)
	}
	return nil
}

func (s *Socket) String() string {
	if !s.Valid() {
		return "socket(invalid)"
	}
	return fmt.Sprintf("socket(%d)", s.fd)
}
