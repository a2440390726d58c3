//go:build linux
// +build linux

// File: core/handle/kinds_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package handle

import (
	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/evio"
	"github.com/momentics/hioload-evio/core/socket"
)

type (
	// Event owns an fd readiness registration or a timer.
	Event = Owned[evio.Event, *evio.Event]
	// Listener owns a connection listener.
	Listener = Owned[evio.Listener, *evio.Listener]
	// BufferEvent owns a buffered connection.
	BufferEvent = Owned[evio.BufferEvent, *evio.BufferEvent]
)

// NewEvent registers nothing until the event is added.
func NewEvent(loop api.Loop, fd int, what api.FDEventType, prio int, cb evio.EventFunc) (*Event, error) {
	return New(evio.NewEvent(loop, fd, what, prio, cb))
}

func NewTimer(loop api.Loop, prio int, persist bool, cb evio.EventFunc) (*Event, error) {
	ev, err := evio.NewTimer(loop, prio, persist, cb)
	return adopt(ev, err)
}

// NewListener must run on the loop goroutine.
func NewListener(loop api.Loop, sock *socket.Socket, backlog, prio int, cb evio.AcceptFunc) (*Listener, error) {
	l, err := evio.NewListener(loop, sock, backlog, prio, cb)
	return adopt(l, err)
}

func NewBufferEvent(loop api.Loop, sock *socket.Socket, prio int) (*BufferEvent, error) {
	b, err := evio.NewBufferEvent(loop, sock, prio)
	return adopt(b, err)
}
