package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-evio/core/buffer"
)

func TestFixedEnsureAndSkip(t *testing.T) {
	b := buffer.NewFixed(make([]byte, 8))
	require.True(t, b.Ensure(8))
	b.SetAt(0, 0xAB)
	assert.Equal(t, byte(0xAB), b.At(0))
	b.Skip(4)
	assert.Equal(t, 4, b.Pos())
	assert.Equal(t, 4, b.Remaining())
	assert.False(t, b.Ensure(5))
	assert.True(t, b.Good(), "Ensure alone must not fault")
}

func TestFixedFaultIsSticky(t *testing.T) {
	b := buffer.NewFixed(make([]byte, 32))
	b.Fault()
	assert.False(t, b.Good())
	assert.False(t, b.Ensure(1))
	b.Skip(1)
	assert.False(t, b.Ensure(1))
}

func TestFixedCursorPastEnd(t *testing.T) {
	b := buffer.NewFixed(make([]byte, 4))
	b.Skip(16)
	assert.Equal(t, 16, b.Pos())
	assert.Nil(t, b.Save())
	assert.Equal(t, 0, b.Remaining())
	assert.Len(t, b.Written(), 4)
	assert.False(t, b.Ensure(0))
}

func TestPoolReuse(t *testing.T) {
	p := buffer.NewPool()
	b1 := p.Get(100)
	assert.Equal(t, 0, len(b1))
	assert.GreaterOrEqual(t, cap(b1), 100)
	assert.Equal(t, int64(1), p.InUse())
	p.Put(b1)
	assert.Equal(t, int64(0), p.InUse())

	big := p.Get(1 << 20)
	assert.GreaterOrEqual(t, cap(big), 1<<20)
	p.Put(big)
}
