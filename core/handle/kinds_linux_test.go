//go:build linux

package handle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/concurrency"
	"github.com/momentics/hioload-evio/core/handle"
	"github.com/momentics/hioload-evio/core/netaddr"
	"github.com/momentics/hioload-evio/core/socket"
)

func startedLoop(t *testing.T) *concurrency.LoopThread {
	t.Helper()
	l, err := concurrency.NewLoopThread("handle", 0, concurrency.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, l.Start())
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestTimerHandleReleasesTimerfd(t *testing.T) {
	l := startedLoop(t)
	fired := make(chan struct{}, 1)

	var fd int
	require.NoError(t, l.Call(func() {
		h, err := handle.NewTimer(l, 0, false, func(api.FDEventType) { fired <- struct{}{} })
		if !assert.NoError(t, err) {
			return
		}
		fd = h.Get().FD()
		assert.NoError(t, h.Get().Add(time.Millisecond))

		moved := h.Take()
		assert.False(t, h.Valid())
		assert.NoError(t, h.Close())

		// the moved-to handle still owns a live timerfd
		_, err = unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		assert.NoError(t, err)

		assert.NoError(t, moved.Close())
		_, err = unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		assert.ErrorIs(t, err, unix.EBADF)
	}))

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, fired, "a closed timer never fires")
}

func TestListenerHandleClosesSocket(t *testing.T) {
	l := startedLoop(t)
	require.NoError(t, l.Call(func() {
		s, err := socket.OpenTCP(netaddr.INet)
		if !assert.NoError(t, err) {
			return
		}
		addr := netaddr.IPv4(127, 0, 0, 1, 0)
		assert.NoError(t, s.Bind(&addr))

		h, err := handle.NewListener(l, s, 8, 0, func(conn *socket.Socket, _ netaddr.SockAddr) { _ = conn.Close() })
		if !assert.NoError(t, err) {
			return
		}
		assert.NoError(t, h.Close())

		// the port is free again once the listener is released
		again, err := socket.OpenTCP(netaddr.INet)
		if !assert.NoError(t, err) {
			return
		}
		defer again.Close()
		assert.NoError(t, again.Bind(&addr))
	}))
}

func TestBufferEventHandle(t *testing.T) {
	l := startedLoop(t)
	p, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(p[1])

	require.NoError(t, l.Call(func() {
		h, err := handle.NewBufferEvent(l, socket.FromFD(p[0]), 0)
		if !assert.NoError(t, err) {
			return
		}
		assert.NoError(t, h.Get().Enable())
		assert.NoError(t, h.Close())
		assert.NoError(t, h.Close())
	}))
}

func TestBufferEventHandleRejectsInvalidSocket(t *testing.T) {
	l := startedLoop(t)
	require.NoError(t, l.Call(func() {
		h, err := handle.NewBufferEvent(l, socket.New(), 0)
		assert.Nil(t, h)
		assert.ErrorIs(t, err, socket.ErrInvalid)
	}))
}
