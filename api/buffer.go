// Package api
// Author: momentics
//
// Cursor-style buffer capability consumed by the wire codecs.
//
// The framing layer owns the bytes; codecs only see a cursor with a sticky
// fault flag so that many fields can be attempted before a single check.

package api

// WireBuffer is a cursor over a byte sequence.
type WireBuffer interface {
	// Ensure reports whether n more bytes are available at the cursor.
	// It does not fault by itself; callers fault on a false result.
	Ensure(n int) bool

	// At reads the byte at offset i from the cursor, within the ensured window.
	At(i int) byte

	// SetAt writes the byte at offset i from the cursor, within the ensured window.
	SetAt(i int, v byte)

	// Save returns the bytes starting at the cursor for bulk copies.
	Save() []byte

	// Skip advances the cursor by n bytes.
	Skip(n int)

	// Fault sets the sticky fault flag.
	Fault()

	// Good reports whether no fault has been recorded.
	Good() bool
}
