// File: core/handle/kinds.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package handle

import (
	"github.com/momentics/hioload-evio/core/buffer"
	"github.com/momentics/hioload-evio/core/evio"
)

// Buffer owns a byte buffer.
type Buffer = Owned[evio.Buffer, *evio.Buffer]

// NewBuffer allocates an empty byte buffer on buffer.DefaultPool.
func NewBuffer() (*Buffer, error) {
	return New(evio.NewBuffer())
}

// NewBufferWithPool allocates an empty byte buffer drawing chunks from pool.
func NewBufferWithPool(pool *buffer.Pool) (*Buffer, error) {
	return New(evio.NewBufferWithPool(pool))
}
