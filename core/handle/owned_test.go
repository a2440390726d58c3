package handle_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/handle"
)

// counted records how many times it was freed.
type counted struct {
	frees int
	err   error
}

func (c *counted) Free() error {
	c.frees++
	return c.err
}

type countedHandle = handle.Owned[counted, *counted]

func TestNewNilIsAllocFailure(t *testing.T) {
	h, err := handle.New[counted, *counted](nil)
	assert.Nil(t, h)
	require.ErrorIs(t, err, api.ErrAlloc)

	var aerr *api.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, api.ErrCodeAlloc, aerr.Code)
	assert.Contains(t, aerr.Message, "counted")
}

func TestZeroValueIsEmpty(t *testing.T) {
	var h countedHandle
	assert.False(t, h.Valid())
	assert.Nil(t, h.Get())
	assert.NoError(t, h.Close())
}

func TestCloseFreesExactlyOnce(t *testing.T) {
	c := &counted{}
	h, err := handle.New(c)
	require.NoError(t, err)
	require.True(t, h.Valid())
	assert.Same(t, c, h.Get())

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, c.frees)
	assert.False(t, h.Valid())
}

func TestCloseReportsFreeError(t *testing.T) {
	boom := errors.New("boom")
	h, err := handle.New(&counted{err: boom})
	require.NoError(t, err)
	assert.ErrorIs(t, h.Close(), boom)
	assert.False(t, h.Valid())
}

func TestTakeMovesOwnership(t *testing.T) {
	c := &counted{}
	a, err := handle.New(c)
	require.NoError(t, err)

	b := a.Take()
	assert.False(t, a.Valid())
	assert.True(t, b.Valid())

	require.NoError(t, a.Close())
	assert.Equal(t, 0, c.frees)
	require.NoError(t, b.Close())
	assert.Equal(t, 1, c.frees)

	// moving from an empty handle yields an empty handle
	assert.False(t, a.Take().Valid())
}

func TestResetReleasesPrevious(t *testing.T) {
	first, second := &counted{}, &counted{}
	h, err := handle.New(first)
	require.NoError(t, err)

	require.NoError(t, h.Reset(second))
	assert.Equal(t, 1, first.frees)
	assert.Same(t, second, h.Get())

	// same resource again is not a release
	require.NoError(t, h.Reset(second))
	assert.Equal(t, 0, second.frees)

	require.ErrorIs(t, h.Reset(nil), api.ErrAlloc)
	assert.Same(t, second, h.Get())

	require.NoError(t, h.Close())
	assert.Equal(t, 1, second.frees)
}

func TestResetOnEmptyAdopts(t *testing.T) {
	var h countedHandle
	c := &counted{}
	require.NoError(t, h.Reset(c))
	assert.True(t, h.Valid())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, c.frees)
}

func TestReleaseSkipsFree(t *testing.T) {
	c := &counted{}
	h, err := handle.New(c)
	require.NoError(t, err)
	assert.Same(t, c, h.Release())
	require.NoError(t, h.Close())
	assert.Equal(t, 0, c.frees)
}

func TestBufferHandle(t *testing.T) {
	h, err := handle.NewBuffer()
	require.NoError(t, err)
	h.Get().Append([]byte("payload"))
	assert.Equal(t, 7, h.Get().Len())
	require.NoError(t, h.Close())
	assert.False(t, h.Valid())
}
