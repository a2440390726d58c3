package evio_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-evio/core/buffer"
	"github.com/momentics/hioload-evio/core/evio"
	"github.com/momentics/hioload-evio/core/netaddr"
	"github.com/momentics/hioload-evio/core/protocol"
)

func pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i * 7)
	}
	return p
}

func TestBufferAppendAcrossChunks(t *testing.T) {
	b := evio.NewBufferWithPool(buffer.NewPool())
	data := pattern(10_000)
	b.Append(data[:3])
	b.Append(data[3:])
	assert.Equal(t, len(data), b.Len())
	assert.Equal(t, data, b.Bytes())
}

func TestBufferReadAndDrain(t *testing.T) {
	b := evio.NewBuffer()
	data := pattern(5000)
	_, _ = b.Write(data)

	head := make([]byte, 100)
	n, err := b.Read(head)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[:100], head)

	assert.Equal(t, 2500, b.Drain(2500))
	assert.Equal(t, data[2600:], b.Bytes())

	// draining more than is there stops at empty
	assert.Equal(t, 2400, b.Drain(1<<20))
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Bytes())

	n, err = b.Read(head)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestBufferIsAReader(t *testing.T) {
	b := evio.NewBuffer()
	data := pattern(7000)
	b.Append(data)
	got, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestBufferReserveCommitAddress(t *testing.T) {
	b := evio.NewBuffer()
	b.Append([]byte{0xAA})

	w := b.Reserve(protocol.AddrWireSize)
	protocol.ToWire(w, netaddr.IPv4(192, 168, 1, 9, 0))
	b.Commit(w)
	require.Equal(t, 1+protocol.AddrWireSize, b.Len())

	raw := b.Bytes()
	assert.Equal(t, byte(0xAA), raw[0])

	var got netaddr.SockAddr
	r := buffer.NewFixed(raw[1:])
	protocol.FromWire(r, &got)
	require.True(t, r.Good())
	assert.Equal(t, netaddr.IPv4(192, 168, 1, 9, 0), got)
}

func TestBufferFaultedReservePublishesNothing(t *testing.T) {
	b := evio.NewBuffer()
	w := b.Reserve(8)
	protocol.ToWire(w, netaddr.IPv4(10, 0, 0, 1, 0))
	assert.False(t, w.Good())
	b.Commit(w)
	assert.Zero(t, b.Len())
}

func TestBufferFreeReturnsChunks(t *testing.T) {
	pool := buffer.NewPool()
	b := evio.NewBufferWithPool(pool)
	b.Append(pattern(20_000))
	assert.Positive(t, pool.InUse())

	require.NoError(t, b.Free())
	assert.Zero(t, pool.InUse())
	assert.Zero(t, b.Len())

	// reusable after free
	b.Append([]byte("x"))
	assert.Equal(t, []byte("x"), b.Bytes())
	require.NoError(t, b.Free())
	require.NoError(t, b.Free())
	assert.Zero(t, pool.InUse())
}
