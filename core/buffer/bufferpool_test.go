package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-evio/core/buffer"
)

func TestPoolSizeClasses(t *testing.T) {
	p := buffer.NewPool()
	for _, tc := range []struct{ want, cap int }{
		{1, 512},
		{512, 512},
		{513, 2048},
		{16 * 1024, 16 * 1024},
		{64 * 1024, 64 * 1024},
	} {
		b := p.Get(tc.want)
		assert.Zero(t, len(b))
		assert.Equal(t, tc.cap, cap(b), "request %d", tc.want)
		p.Put(b)
	}
	assert.Zero(t, p.InUse())
}

func TestPoolOversizedBypasses(t *testing.T) {
	p := buffer.NewPool()
	b := p.Get(1 << 20)
	assert.Equal(t, 1<<20, cap(b))
	assert.Equal(t, int64(1), p.InUse())
	p.Put(b)
	assert.Zero(t, p.InUse())
}

func TestPoolReturnsFullLengthChunks(t *testing.T) {
	p := buffer.NewPool()
	b := p.Get(100)
	b = append(b, 1, 2, 3)
	p.Put(b)
	again := p.Get(100)
	assert.Zero(t, len(again))
	assert.Equal(t, 512, cap(again))
}
