// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake buffer capability for testing codecs against an instrumented cursor.

package fake

import "github.com/momentics/hioload-evio/api"

var _ api.WireBuffer = (*WireBuffer)(nil)

// WireBuffer records every cursor operation. Capacity bounds Ensure;
// Ensure never faults by itself, matching the real contract.
type WireBuffer struct {
	Data     []byte
	Capacity int

	Pos        int
	Faults     int
	EnsureLog  []int
	SkipLog    []int
	faulted    bool
	touchedOOB bool
}

// NewWireBuffer creates a zero-filled buffer of the given capacity.
func NewWireBuffer(capacity int) *WireBuffer {
	return &WireBuffer{Data: make([]byte, capacity), Capacity: capacity}
}

// NewWireBufferFrom copies data into a buffer sized to it.
func NewWireBufferFrom(data []byte) *WireBuffer {
	d := make([]byte, len(data))
	copy(d, data)
	return &WireBuffer{Data: d, Capacity: len(d)}
}

func (b *WireBuffer) Ensure(n int) bool {
	b.EnsureLog = append(b.EnsureLog, n)
	return !b.faulted && b.Pos+n <= b.Capacity
}

func (b *WireBuffer) At(i int) byte {
	if b.Pos+i >= len(b.Data) {
		b.touchedOOB = true
		return 0
	}
	return b.Data[b.Pos+i]
}

func (b *WireBuffer) SetAt(i int, v byte) {
	if b.Pos+i >= len(b.Data) {
		b.touchedOOB = true
		return
	}
	b.Data[b.Pos+i] = v
}

func (b *WireBuffer) Save() []byte {
	if b.Pos > len(b.Data) {
		b.touchedOOB = true
		return nil
	}
	return b.Data[b.Pos:]
}

func (b *WireBuffer) Skip(n int) {
	b.SkipLog = append(b.SkipLog, n)
	b.Pos += n
}

func (b *WireBuffer) Fault() {
	b.Faults++
	b.faulted = true
}

func (b *WireBuffer) Good() bool { return !b.faulted }

// TouchedOutOfBounds reports whether a byte access escaped the data.
func (b *WireBuffer) TouchedOutOfBounds() bool { return b.touchedOOB }
