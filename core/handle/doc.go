// File: core/handle/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package handle provides exclusive-ownership wrappers over the native
// resources in core/evio. A handle is never copied, only moved; the resource
// it holds is released exactly once. Handles over loop-bound kinds must be
// closed on their loop goroutine.
package handle
