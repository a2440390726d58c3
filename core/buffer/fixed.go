// File: core/buffer/fixed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed is an api.WireBuffer over a caller-provided slice. It serves both
// encoding (writes through SetAt/Save) and decoding (reads through At/Save).

package buffer

import "github.com/momentics/hioload-evio/api"

var _ api.WireBuffer = (*Fixed)(nil)

// Fixed never grows. The cursor may run past the end after a fault so that
// fixed-width field offsets stay consistent for the caller.
type Fixed struct {
	buf   []byte
	pos   int
	fault bool
}

// NewFixed wraps b with the cursor at offset 0.
func NewFixed(b []byte) *Fixed {
	return &Fixed{buf: b}
}

func (f *Fixed) Ensure(n int) bool {
	return !f.fault && n >= 0 && f.pos <= len(f.buf) && len(f.buf)-f.pos >= n
}

func (f *Fixed) At(i int) byte { return f.buf[f.pos+i] }

func (f *Fixed) SetAt(i int, v byte) { f.buf[f.pos+i] = v }

// Save returns the window at the cursor, or nil once the cursor is past the end.
func (f *Fixed) Save() []byte {
	if f.pos > len(f.buf) {
		return nil
	}
	return f.buf[f.pos:]
}

func (f *Fixed) Skip(n int) { f.pos += n }

func (f *Fixed) Fault() { f.fault = true }

func (f *Fixed) Good() bool { return !f.fault }

// Pos is the cursor offset from the start of the slice.
func (f *Fixed) Pos() int { return f.pos }

// Remaining is the number of bytes left, zero when faulted past the end.
func (f *Fixed) Remaining() int {
	if f.pos >= len(f.buf) {
		return 0
	}
	return len(f.buf) - f.pos
}

// Written returns the prefix up to the cursor, clamped to the slice.
func (f *Fixed) Written() []byte {
	if f.pos > len(f.buf) {
		return f.buf
	}
	return f.buf[:f.pos]
}
