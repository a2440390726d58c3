//go:build linux
// +build linux

// File: core/evio/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evio

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/netaddr"
	"github.com/momentics/hioload-evio/core/socket"
)

// AcceptFunc receives ownership of each accepted connection.
type AcceptFunc func(conn *socket.Socket, peer netaddr.SockAddr)

// Listener accepts stream connections on a bound socket it owns.
type Listener struct {
	loop    api.Loop
	sock    *socket.Socket
	prio    int
	cb      AcceptFunc
	errCb   func(error)
	log     *zap.Logger
	enabled bool
	freed   bool
}

// NewListener takes ownership of sock (already bound), starts listening and
// begins accepting. Must run on the loop goroutine.
func NewListener(loop api.Loop, sock *socket.Socket, backlog, prio int, cb AcceptFunc) (*Listener, error) {
	loop.AssertInLoop()
	l := &Listener{
		loop: loop,
		sock: sock.Take(),
		prio: prio,
		cb:   cb,
		log:  loopLogger(loop, "listener"),
	}
	if err := l.sock.SetNonblock(true); err != nil {
		return nil, multierr.Append(err, l.sock.Close())
	}
	if err := l.sock.Listen(backlog); err != nil {
		return nil, multierr.Append(err, l.sock.Close())
	}
	if err := l.Enable(); err != nil {
		return nil, multierr.Append(err, l.sock.Close())
	}
	return l, nil
}

// SetErrorCallback installs a handler for accept failures other than
// EAGAIN; without one they are logged.
func (l *Listener) SetErrorCallback(fn func(error)) { l.errCb = fn }

// Addr returns the listening address.
func (l *Listener) Addr() (netaddr.SockAddr, error) { return l.sock.LocalAddr() }

// Enable resumes accepting.
func (l *Listener) Enable() error {
	l.loop.AssertInLoop()
	if l.freed {
		return api.ErrFreed
	}
	if l.enabled {
		return nil
	}
	if err := l.loop.Reactor().Register(uintptr(l.sock.FD()), api.EventRead, l.prio, l.onReadable); err != nil {
		return err
	}
	l.enabled = true
	l.log.Debug("listener enabled", zap.Int("fd", l.sock.FD()))
	return nil
}

// Disable stops accepting; pending connections stay in the backlog.
func (l *Listener) Disable() error {
	l.loop.AssertInLoop()
	if !l.enabled {
		return nil
	}
	l.enabled = false
	return l.loop.Reactor().Unregister(uintptr(l.sock.FD()))
}

// Free stops accepting and closes the listening socket.
func (l *Listener) Free() error {
	if l.freed {
		return nil
	}
	err := l.Disable()
	l.freed = true
	return multierr.Append(err, l.sock.Close())
}

func (l *Listener) onReadable(_ uintptr, _ api.FDEventType) {
	for l.enabled {
		conn, peer, err := l.sock.Accept()
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				return
			}
			if l.errCb != nil {
				l.errCb(err)
			} else {
				l.log.Warn("accept failed", zap.Error(err))
			}
			return
		}
		if l.cb == nil {
			_ = conn.Close()
			continue
		}
		l.cb(conn, peer)
	}
}
