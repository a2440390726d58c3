// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "github.com/momentics/hioload-evio/api"

var (
	// ErrLoopClosed is returned by Start, Dispatch and Call once Close has begun.
	ErrLoopClosed = api.ErrLoopClosed

	// ErrLoopNotRunning is returned by Call before Start; nothing would run it.
	ErrLoopNotRunning = api.ErrLoopNotRunning
)
