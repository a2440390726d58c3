// File: core/evio/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package evio implements the native asynchronous resources that live on an
// event loop thread: fd and timer events, connection listeners, buffered
// connections and pooled byte buffers.
//
// Everything except Buffer is bound to a loop and touches its reactor; those
// methods must run on the loop goroutine and assert it. Each kind has a Free
// method that releases it; core/handle wraps them for single ownership.
package evio
