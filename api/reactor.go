// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the readiness reactor owned by an
// event loop thread, and the loop contract exposed to native resources.

package api

// FDEventType is a bitmask of readiness conditions.
type FDEventType uint32

const (
	EventRead FDEventType = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// FDCallback is invoked on the loop goroutine when fd becomes ready.
type FDCallback func(fd uintptr, events FDEventType)

// Reactor multiplexes readiness for descriptors registered on one loop.
type Reactor interface {
	// Register associates fd with cb. prio orders callbacks that are ready in
	// the same poll batch; lower runs first.
	Register(fd uintptr, events FDEventType, prio int, cb FDCallback) error

	// Modify changes the interest set of a registered fd.
	Modify(fd uintptr, events FDEventType) error

	// Unregister removes fd from the interest set.
	Unregister(fd uintptr) error

	// Poll waits up to timeoutMs (negative blocks) and runs ready callbacks.
	Poll(timeoutMs int) error

	// Wake interrupts a blocked Poll from any goroutine; the wake handler
	// runs on the polling goroutine within the next batch.
	Wake() error

	// OnWake installs the wake handler at priority prio.
	OnWake(prio int, fn func())

	// Close releases the backend.
	Close() error
}

// Loop is the contract of an event loop thread as seen by resources bound to it.
type Loop interface {
	Dispatch(fn func()) error
	Call(fn func()) error
	InLoop() bool
	AssertInLoop()
	Reactor() Reactor
}
