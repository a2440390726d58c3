//go:build linux
// +build linux

// File: core/evio/bufferevent_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evio

import (
	"errors"
	"io"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/socket"
)

// Condition flags passed to a BufferEvent's event callback.
type Condition uint8

const (
	Reading Condition = 1 << iota
	Writing
	EOF
	Failed
)

// readChunk is the tail space guaranteed before each read from the socket.
const readChunk = 16 * 1024

// BufferEvent is a stream connection with an input and an output Buffer.
// Incoming bytes are appended to Input and the read callback runs; Write
// queues to Output, which is flushed as the socket becomes writable.
type BufferEvent struct {
	loop     api.Loop
	sock     *socket.Socket
	prio     int
	in, out  *Buffer
	onRead   func(*BufferEvent)
	onEvent  func(*BufferEvent, Condition, error)
	interest api.FDEventType
	reg      bool
	freed    bool
}

// NewBufferEvent takes ownership of a connected socket and switches it to
// non-blocking mode. Reading starts with Enable.
func NewBufferEvent(loop api.Loop, sock *socket.Socket, prio int) (*BufferEvent, error) {
	b := &BufferEvent{
		loop: loop,
		sock: sock.Take(),
		prio: prio,
		in:   NewBuffer(),
		out:  NewBuffer(),
	}
	if err := b.sock.SetNonblock(true); err != nil {
		return nil, multierr.Append(err, b.sock.Close())
	}
	return b, nil
}

// Input holds received bytes not yet consumed.
func (b *BufferEvent) Input() *Buffer { return b.in }

// Output holds bytes not yet written to the socket.
func (b *BufferEvent) Output() *Buffer { return b.out }

// SetCallbacks installs the read and event callbacks; either may be nil.
func (b *BufferEvent) SetCallbacks(read func(*BufferEvent), event func(*BufferEvent, Condition, error)) {
	b.onRead = read
	b.onEvent = event
}

// Enable starts delivering reads.
func (b *BufferEvent) Enable() error {
	b.loop.AssertInLoop()
	if b.freed {
		return api.ErrFreed
	}
	return b.setInterest(b.interest | api.EventRead)
}

// Disable stops delivering reads; queued output still drains.
func (b *BufferEvent) Disable() error {
	b.loop.AssertInLoop()
	return b.setInterest(b.interest &^ api.EventRead)
}

// Write queues p and writes as much as the socket accepts now.
func (b *BufferEvent) Write(p []byte) error {
	b.loop.AssertInLoop()
	if b.freed {
		return api.ErrFreed
	}
	b.out.Append(p)
	return b.flush()
}

// Free unregisters, closes the socket and releases both buffers. Unwritten
// output is dropped.
func (b *BufferEvent) Free() error {
	if b.freed {
		return nil
	}
	var err error
	if b.reg {
		b.loop.AssertInLoop()
		err = b.loop.Reactor().Unregister(uintptr(b.sock.FD()))
		b.reg = false
	}
	b.freed = true
	return multierr.Combine(err, b.sock.Close(), b.in.Free(), b.out.Free())
}

func (b *BufferEvent) setInterest(want api.FDEventType) error {
	if want == b.interest && (b.reg || want == 0) {
		return nil
	}
	r := b.loop.Reactor()
	fd := uintptr(b.sock.FD())
	var err error
	switch {
	case want == 0 && b.reg:
		err = r.Unregister(fd)
		b.reg = false
	case want == 0:
	case b.reg:
		err = r.Modify(fd, want)
	default:
		err = r.Register(fd, want, b.prio, b.onReady)
		b.reg = err == nil
	}
	if err == nil {
		b.interest = want
	}
	return err
}

// flush writes queued output until it is empty or the socket would block,
// and tracks write interest accordingly.
func (b *BufferEvent) flush() error {
	for b.out.Len() > 0 {
		n, err := unix.Write(b.sock.FD(), b.out.head())
		if n > 0 {
			b.out.Drain(n)
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return b.setInterest(b.interest | api.EventWrite)
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
	}
	return b.setInterest(b.interest &^ api.EventWrite)
}

func (b *BufferEvent) onReady(_ uintptr, what api.FDEventType) {
	if what&(api.EventRead|api.EventHangup|api.EventError) != 0 && b.interest&api.EventRead != 0 {
		got, err := b.fill()
		if got > 0 && b.onRead != nil {
			b.onRead(b)
		}
		if b.freed {
			return
		}
		if err != nil {
			b.fail(Reading, err)
			return
		}
	}
	if what&api.EventWrite != 0 && !b.freed {
		if err := b.flush(); err != nil {
			b.fail(Writing, err)
		}
	}
}

// fill reads until the socket would block. io.EOF reports an orderly close.
func (b *BufferEvent) fill() (int, error) {
	total := 0
	for {
		w := b.in.Reserve(readChunk)
		n, err := unix.Read(b.sock.FD(), w.Save())
		if n > 0 {
			w.Skip(n)
			b.in.Commit(w)
			total += n
		}
		switch {
		case err == nil && n == 0:
			return total, io.EOF
		case err == nil:
			continue
		case errors.Is(err, unix.EAGAIN):
			return total, nil
		case errors.Is(err, unix.EINTR):
			continue
		default:
			return total, err
		}
	}
}

// fail stops reading and reports cond to the event callback.
func (b *BufferEvent) fail(cond Condition, err error) {
	_ = b.setInterest(0)
	if errors.Is(err, io.EOF) {
		cond |= EOF
		err = nil
	} else {
		cond |= Failed
	}
	if b.onEvent != nil {
		b.onEvent(b, cond, err)
	}
}
