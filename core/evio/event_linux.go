//go:build linux
// +build linux

// File: core/evio/event_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evio

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/api"
)

// Timeout is reported to event callbacks when a timer expires.
const Timeout = api.EventHangup << 1

// EventFunc receives the conditions that fired.
type EventFunc func(what api.FDEventType)

// Event is a readiness registration on a caller-owned descriptor, or a timer
// backed by a timerfd the Event owns. All methods run on the loop goroutine.
type Event struct {
	loop    api.Loop
	fd      int
	what    api.FDEventType
	prio    int
	cb      EventFunc
	timer   bool
	persist bool
	added   bool
	freed   bool
}

// NewEvent watches fd for what. The descriptor stays owned by the caller and
// must outlive the Event.
func NewEvent(loop api.Loop, fd int, what api.FDEventType, prio int, cb EventFunc) *Event {
	return &Event{loop: loop, fd: fd, what: what, prio: prio, cb: cb}
}

// NewTimer creates a one-shot timer, or a periodic one when persist is set.
func NewTimer(loop api.Loop, prio int, persist bool, cb EventFunc) (*Event, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd create: %w", err)
	}
	return &Event{
		loop:    loop,
		fd:      fd,
		what:    api.EventRead,
		prio:    prio,
		cb:      cb,
		timer:   true,
		persist: persist,
	}, nil
}

// FD returns the watched descriptor (the timerfd for timers).
func (e *Event) FD() int { return e.fd }

// Pending reports whether the event is added.
func (e *Event) Pending() bool { return e.added }

// Add activates the event. For timers it (re)arms the expiry to timeout from
// now; fd events take no timeout.
func (e *Event) Add(timeout time.Duration) error {
	e.loop.AssertInLoop()
	if e.freed {
		return api.ErrFreed
	}
	if e.timer {
		if err := e.arm(timeout); err != nil {
			return err
		}
	} else if timeout != 0 {
		return fmt.Errorf("fd event timeout: %w", api.ErrNotSupported)
	}
	if e.added {
		return nil
	}
	if err := e.loop.Reactor().Register(uintptr(e.fd), e.what, e.prio, e.fire); err != nil {
		return err
	}
	e.added = true
	return nil
}

// Del deactivates the event; a timer is disarmed.
func (e *Event) Del() error {
	if !e.added {
		return nil
	}
	e.loop.AssertInLoop()
	e.added = false
	var err error
	if e.timer {
		err = e.arm(-1)
	}
	if uerr := e.loop.Reactor().Unregister(uintptr(e.fd)); uerr != nil && !errors.Is(uerr, api.ErrNotRegistered) {
		err = multierr.Append(err, uerr)
	}
	return err
}

// Free deletes the event and closes the timerfd. Later calls are no-ops.
func (e *Event) Free() error {
	if e.freed {
		return nil
	}
	err := e.Del()
	e.freed = true
	if e.timer {
		if cerr := unix.Close(e.fd); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("timerfd close: %w", cerr))
		}
	}
	return err
}

// arm sets the timerfd; d < 0 disarms, d == 0 fires on the next poll.
func (e *Event) arm(d time.Duration) error {
	var spec unix.ItimerSpec
	if d >= 0 {
		spec.Value = unix.NsecToTimespec(max(d, time.Nanosecond).Nanoseconds())
		if e.persist {
			spec.Interval = spec.Value
		}
	}
	if err := unix.TimerfdSettime(e.fd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd settime: %w", err)
	}
	return nil
}

func (e *Event) fire(_ uintptr, what api.FDEventType) {
	if e.timer {
		var exp [8]byte
		if _, err := unix.Read(e.fd, exp[:]); err != nil {
			// spurious: the timer was re-armed or disarmed after it fired
			return
		}
		if !e.persist {
			e.added = false
			_ = e.loop.Reactor().Unregister(uintptr(e.fd))
		}
		what = Timeout
	}
	if e.cb != nil {
		e.cb(what)
	}
}
