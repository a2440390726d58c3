// File: core/socket/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package socket provides a move-only owner for an OS socket descriptor with
// bind and IP multicast controls.
//
// A Socket is either valid (owns exactly one descriptor) or invalid. Take
// moves ownership; Close releases the descriptor exactly once. OS failures
// come back as *Error, which unwraps to the errno.
package socket
