// File: core/buffer/bufferpool.go
// Package buffer implements size-classed chunk pooling for native byte buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"sync"
	"sync/atomic"
)

// Predefined (power-of-two) chunk size classes (bytes)
var sizeClasses = [...]int{
	512,
	2 * 1024,
	4 * 1024,
	16 * 1024,
	64 * 1024,
}

// sizeClassUpperBound returns the smallest class >= requested size, or -1 when
// the request is larger than every class.
func sizeClassUpperBound(size int) int {
	for i, c := range sizeClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// Pool hands out byte chunks by size class. Oversized requests bypass the pool.
type Pool struct {
	classes [len(sizeClasses)]sync.Pool

	// statistics
	totalAlloc int64
	totalFree  int64
}

// DefaultPool is shared by buffers created without an explicit pool.
var DefaultPool = NewPool()

// NewPool creates an empty pool.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.classes {
		sz := sizeClasses[i]
		p.classes[i].New = func() any {
			b := make([]byte, sz)
			return &b
		}
	}
	return p
}

// Get returns a zero-length chunk with capacity of at least size.
func (p *Pool) Get(size int) []byte {
	atomic.AddInt64(&p.totalAlloc, 1)
	idx := sizeClassUpperBound(size)
	if idx < 0 {
		return make([]byte, 0, size)
	}
	b := p.classes[idx].Get().(*[]byte)
	return (*b)[:0]
}

// Put returns a chunk; chunks whose capacity is not a class size are dropped.
func (p *Pool) Put(b []byte) {
	atomic.AddInt64(&p.totalFree, 1)
	c := cap(b)
	for i, sz := range sizeClasses {
		if c == sz {
			b = b[:sz]
			p.classes[i].Put(&b)
			return
		}
	}
}

// InUse reports chunks handed out and not yet returned.
func (p *Pool) InUse() int64 {
	return atomic.LoadInt64(&p.totalAlloc) - atomic.LoadInt64(&p.totalFree)
}
