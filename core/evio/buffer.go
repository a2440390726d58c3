// File: core/evio/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer is a byte queue made of pooled chunks. Appends go to the tail chunk,
// reads and drains consume from the head; exhausted chunks go back to the pool.

package evio

import (
	"io"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-evio/core/buffer"
)

// minChunk is the smallest chunk a Buffer requests from its pool.
const minChunk = 2 * 1024

type chunk struct {
	b   []byte // len(b) is the write offset
	off int    // read offset
}

func (c *chunk) unread() []byte { return c.b[c.off:] }
func (c *chunk) spare() int     { return cap(c.b) - len(c.b) }

// Buffer is not safe for concurrent use.
type Buffer struct {
	pool   *buffer.Pool
	chunks *queue.Queue // of *chunk
	n      int
}

// NewBuffer returns an empty buffer drawing chunks from buffer.DefaultPool.
func NewBuffer() *Buffer { return NewBufferWithPool(buffer.DefaultPool) }

// NewBufferWithPool returns an empty buffer drawing chunks from pool.
func NewBufferWithPool(pool *buffer.Pool) *Buffer {
	if pool == nil {
		pool = buffer.DefaultPool
	}
	return &Buffer{pool: pool, chunks: queue.New()}
}

// Len reports the number of unread bytes.
func (b *Buffer) Len() int { return b.n }

// Append copies p to the tail.
func (b *Buffer) Append(p []byte) {
	for len(p) > 0 {
		c := b.tail()
		if c == nil || c.spare() == 0 {
			c = b.grow(len(p))
		}
		k := min(len(p), c.spare())
		c.b = append(c.b, p[:k]...)
		b.n += k
		p = p[k:]
	}
}

// Write implements io.Writer; it never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// Bytes returns a contiguous copy of the unread bytes.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, 0, b.n)
	for i := 0; i < b.chunks.Length(); i++ {
		out = append(out, b.chunks.Get(i).(*chunk).unread()...)
	}
	return out
}

// Read copies up to len(p) bytes out of the head and drains them. An empty
// buffer reports io.EOF.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	read := 0
	for read < len(p) && b.n > 0 {
		c := b.chunks.Peek().(*chunk)
		k := copy(p[read:], c.unread())
		read += k
		b.consume(c, k)
	}
	return read, nil
}

// Drain discards up to n bytes from the head and returns how many went.
func (b *Buffer) Drain(n int) int {
	dropped := 0
	for dropped < n && b.n > 0 {
		c := b.chunks.Peek().(*chunk)
		k := min(n-dropped, len(c.unread()))
		dropped += k
		b.consume(c, k)
	}
	return dropped
}

// Reserve exposes n contiguous writable bytes at the tail as a wire buffer.
// Nothing is visible to readers until Commit; the buffer must not be read,
// drained or appended to in between.
func (b *Buffer) Reserve(n int) *buffer.Fixed {
	c := b.tail()
	if c == nil || c.spare() < n {
		c = b.grow(n)
	}
	return buffer.NewFixed(c.b[len(c.b) : len(c.b)+n])
}

// Commit publishes the bytes written through w, the most recent Reserve.
// A faulted w publishes nothing.
func (b *Buffer) Commit(w *buffer.Fixed) {
	if !w.Good() || b.chunks.Length() == 0 {
		return
	}
	c := b.chunks.Get(-1).(*chunk)
	k := min(len(w.Written()), c.spare())
	c.b = c.b[:len(c.b)+k]
	b.n += k
}

// Free returns every chunk to the pool. The buffer is empty afterwards and
// may be reused.
func (b *Buffer) Free() error {
	for b.chunks.Length() > 0 {
		b.pool.Put(b.chunks.Remove().(*chunk).b)
	}
	b.n = 0
	return nil
}

// head returns the first unread segment, or nil when empty.
func (b *Buffer) head() []byte {
	if b.chunks.Length() == 0 {
		return nil
	}
	return b.chunks.Peek().(*chunk).unread()
}

func (b *Buffer) tail() *chunk {
	if b.chunks.Length() == 0 {
		return nil
	}
	return b.chunks.Get(-1).(*chunk)
}

func (b *Buffer) grow(want int) *chunk {
	c := &chunk{b: b.pool.Get(max(want, minChunk))}
	b.chunks.Add(c)
	return c
}

// consume marks k bytes of the head chunk read. A spent head goes back to the
// pool unless it is the only chunk, which is rewound for reuse.
func (b *Buffer) consume(c *chunk, k int) {
	c.off += k
	b.n -= k
	if c.off < len(c.b) {
		return
	}
	if b.chunks.Length() == 1 {
		c.b, c.off = c.b[:0], 0
		return
	}
	b.pool.Put(b.chunks.Remove().(*chunk).b)
}
