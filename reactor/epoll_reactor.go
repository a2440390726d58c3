//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation with an eventfd waker.

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/api"
)

// registration is one interest entry. Pointer identity tells a stale ready
// event apart from a re-registration of a recycled fd.
type registration struct {
	fd   uintptr
	prio int
	cb   api.FDCallback
}

type readyEvent struct {
	reg    *registration // nil for the waker
	events api.FDEventType
}

// epollReactor implements api.Reactor using Linux epoll.
type epollReactor struct {
	epfd   int
	wakefd int
	log    *zap.Logger

	mu      sync.Mutex
	regs    map[uintptr]*registration
	closed  bool
	wakePri int
	wakeFn  func()

	events []unix.EpollEvent
	ready  []readyEvent

	closeOnce sync.Once
}

func newPlatformReactor(o options) (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd create: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add waker: %w", err)
	}
	return &epollReactor{
		epfd:   epfd,
		wakefd: wakefd,
		log:    o.log,
		regs:   make(map[uintptr]*registration),
		events: make([]unix.EpollEvent, o.maxEvents),
	}, nil
}

func toEpoll(events api.FDEventType) uint32 {
	var ev uint32
	if events&api.EventRead != 0 {
		ev |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if events&api.EventWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func fromEpoll(ev uint32) api.FDEventType {
	var t api.FDEventType
	if ev&unix.EPOLLIN != 0 {
		t |= api.EventRead
	}
	if ev&unix.EPOLLOUT != 0 {
		t |= api.EventWrite
	}
	if ev&unix.EPOLLERR != 0 {
		t |= api.EventError
	}
	if ev&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		t |= api.EventHangup
	}
	return t
}

// Register adds a file descriptor to the epoll watch list.
func (r *epollReactor) Register(fd uintptr, events api.FDEventType, prio int, cb api.FDCallback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return api.ErrLoopClosed
	}
	if _, ok := r.regs[fd]; ok {
		return fmt.Errorf("epoll register fd %d: %w", fd, api.ErrAlreadyExists)
	}
	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	r.regs[fd] = &registration{fd: fd, prio: prio, cb: cb}
	return nil
}

// Modify changes the interest set of a registered descriptor.
func (r *epollReactor) Modify(fd uintptr, events api.FDEventType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("epoll modify fd %d: %w", fd, api.ErrNotRegistered)
	}
	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

// Unregister removes a file descriptor from the epoll watch list.
func (r *epollReactor) Unregister(fd uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("epoll unregister fd %d: %w", fd, api.ErrNotRegistered)
	}
	delete(r.regs, fd)
	if r.closed {
		return nil
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil && !errors.Is(err, unix.EBADF) {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// OnWake installs the handler run when the eventfd fires.
func (r *epollReactor) OnWake(prio int, fn func()) {
	r.mu.Lock()
	r.wakePri = prio
	r.wakeFn = fn
	r.mu.Unlock()
}

// Wake bumps the eventfd counter; safe from any goroutine.
func (r *epollReactor) Wake() error {
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	_, err := unix.Write(r.wakefd, one[:])
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

func (r *epollReactor) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(r.wakefd, buf[:]); err != nil {
			return
		}
	}
}

// Poll blocks and waits for events on registered file descriptors, then runs
// the ready callbacks in ascending priority. timeoutMs < 0 blocks indefinitely.
func (r *epollReactor) Poll(timeoutMs int) error {
	if timeoutMs < 0 {
		timeoutMs = -1
	}
	n, err := unix.EpollWait(r.epfd, r.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil // interrupted by signal, normal
		}
		return fmt.Errorf("epoll wait: %w", err)
	}

	r.ready = r.ready[:0]
	r.mu.Lock()
	wakePri, wakeFn := r.wakePri, r.wakeFn
	for i := 0; i < n; i++ {
		ev := r.events[i]
		if int(ev.Fd) == r.wakefd {
			r.drainWake()
			r.ready = append(r.ready, readyEvent{})
			continue
		}
		if reg, ok := r.regs[uintptr(ev.Fd)]; ok {
			r.ready = append(r.ready, readyEvent{reg: reg, events: fromEpoll(ev.Events)})
		}
	}
	r.mu.Unlock()

	prio := func(e readyEvent) int {
		if e.reg == nil {
			return wakePri
		}
		return e.reg.prio
	}
	slices.SortStableFunc(r.ready, func(a, b readyEvent) int { return prio(a) - prio(b) })

	for _, e := range r.ready {
		if e.reg == nil {
			if wakeFn != nil {
				wakeFn()
			}
			continue
		}
		if !r.stillRegistered(e.reg) {
			continue
		}
		r.invoke(e.reg, e.events)
	}
	return nil
}

// stillRegistered drops events whose registration was removed earlier in the batch.
func (r *epollReactor) stillRegistered(reg *registration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs[reg.fd] == reg
}

func (r *epollReactor) invoke(reg *registration, events api.FDEventType) {
	// Use deferred recover to ensure reactor continuity on panics.
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("fd callback panicked", zap.Uintptr("fd", reg.fd), zap.Any("panic", p))
		}
	}()
	reg.cb(reg.fd, events)
}

// Close releases the epoll and eventfd descriptors.
func (r *epollReactor) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		if len(r.regs) > 0 {
			r.log.Debug("closing reactor with live registrations", zap.Int("count", len(r.regs)))
		}
		r.mu.Unlock()
		err = multierr.Combine(unix.Close(r.wakefd), unix.Close(r.epfd))
	})
	return err
}
