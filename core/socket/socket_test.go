//go:build linux

package socket_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/core/netaddr"
	"github.com/momentics/hioload-evio/core/socket"
)

func fdOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

func openUDP4(t *testing.T) *socket.Socket {
	t.Helper()
	s, err := socket.OpenUDP(netaddr.INet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInvalidSocket(t *testing.T) {
	var zero socket.Socket
	assert.False(t, zero.Valid())
	assert.Equal(t, -1, zero.FD())
	assert.NoError(t, zero.Close())

	s := socket.New()
	assert.False(t, s.Valid())
	assert.ErrorIs(t, s.Bind(&netaddr.SockAddr{}), socket.ErrInvalid)
	assert.ErrorIs(t, s.McastTTL(1), socket.ErrInvalid)
	assert.ErrorIs(t, s.McastLoop(true), socket.ErrInvalid)
	assert.ErrorIs(t, s.McastJoin(netaddr.MustParse("239.1.1.1:0"), netaddr.SockAddr{}), socket.ErrInvalid)
	assert.ErrorIs(t, s.McastIface(netaddr.IPv4(127, 0, 0, 1, 0)), socket.ErrInvalid)

	assert.False(t, socket.FromFD(-1).Valid())
}

func TestTakeMovesOwnership(t *testing.T) {
	a := openUDP4(t)
	fd := a.FD()

	b := a.Take()
	defer b.Close()
	assert.False(t, a.Valid())
	assert.True(t, b.Valid())
	assert.Equal(t, fd, b.FD())

	// the moved-from socket must not close the descriptor
	require.NoError(t, a.Close())
	assert.True(t, fdOpen(fd))
}

func TestCloseExactlyOnce(t *testing.T) {
	s, err := socket.OpenUDP(netaddr.INet)
	require.NoError(t, err)
	fd := s.FD()

	require.NoError(t, s.Close())
	assert.False(t, s.Valid())
	assert.False(t, fdOpen(fd))
	assert.NoError(t, s.Close())
}

func TestReplaceClosesPrevious(t *testing.T) {
	a := openUDP4(t)
	b, err := socket.OpenUDP(netaddr.INet)
	require.NoError(t, err)
	oldFD, newFD := a.FD(), b.FD()

	require.NoError(t, a.Replace(b))
	assert.False(t, fdOpen(oldFD))
	assert.Equal(t, newFD, a.FD())
	assert.False(t, b.Valid())
}

func TestReleaseKeepsDescriptorOpen(t *testing.T) {
	s, err := socket.OpenUDP(netaddr.INet)
	require.NoError(t, err)
	fd := s.Release()
	defer unix.Close(fd)
	assert.False(t, s.Valid())
	assert.True(t, fdOpen(fd))
}

func TestOpenReportsErrno(t *testing.T) {
	_, err := socket.Open(-1, unix.SOCK_DGRAM, 0)
	require.Error(t, err)

	var serr *socket.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "socket", serr.Op)
	assert.Equal(t, unix.EAFNOSUPPORT, serr.Errno())
	assert.ErrorIs(t, err, unix.EAFNOSUPPORT)
}

func TestBindReportsEphemeralPort(t *testing.T) {
	s := openUDP4(t)
	addr := netaddr.IPv4(127, 0, 0, 1, 0)
	require.NoError(t, s.Bind(&addr))
	assert.NotZero(t, addr.Port())
	assert.Equal(t, netaddr.INet, addr.Family())

	local, err := s.LocalAddr()
	require.NoError(t, err)
	assert.Equal(t, addr, local)
}

func TestBindAddressInUse(t *testing.T) {
	a, err := socket.OpenTCP(netaddr.INet)
	require.NoError(t, err)
	defer a.Close()
	addr := netaddr.IPv4(127, 0, 0, 1, 0)
	require.NoError(t, a.Bind(&addr))
	require.NoError(t, a.Listen(1))

	b, err := socket.OpenTCP(netaddr.INet)
	require.NoError(t, err)
	defer b.Close()
	taken := addr
	err = b.Bind(&taken)
	require.Error(t, err)
	assert.ErrorIs(t, err, unix.EADDRINUSE)
	assert.Equal(t, addr, taken)
}

func TestBindUnspecRejected(t *testing.T) {
	s := openUDP4(t)
	err := s.Bind(&netaddr.SockAddr{})
	assert.ErrorIs(t, err, unix.EAFNOSUPPORT)
}

func TestMulticastOptionsIPv4(t *testing.T) {
	s := openUDP4(t)

	require.NoError(t, s.McastTTL(7))
	ttl, err := s.GetInt(unix.IPPROTO_IP, unix.IP_MULTICAST_TTL)
	require.NoError(t, err)
	assert.Equal(t, 7, ttl)

	require.NoError(t, s.McastLoop(false))
	loop, err := s.GetInt(unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP)
	require.NoError(t, err)
	assert.Equal(t, 0, loop)

	require.NoError(t, s.McastLoop(true))
	loop, err = s.GetInt(unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP)
	require.NoError(t, err)
	assert.Equal(t, 1, loop)

	assert.NoError(t, s.McastIface(netaddr.IPv4(127, 0, 0, 1, 0)))
}

func TestMulticastOptionsIPv6(t *testing.T) {
	s, err := socket.OpenUDP(netaddr.INet6)
	if errors.Is(err, unix.EAFNOSUPPORT) {
		t.Skip("IPv6 unavailable")
	}
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.McastTTL(3))
	hops, err := s.GetInt(unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_HOPS)
	require.NoError(t, err)
	assert.Equal(t, 3, hops)

	require.NoError(t, s.McastLoop(false))
	loop, err := s.GetInt(unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_LOOP)
	require.NoError(t, err)
	assert.Equal(t, 0, loop)

	// :: selects the default interface
	assert.NoError(t, s.McastIface(netaddr.Any(netaddr.INet6, 0)))
}

func TestMulticastJoinRejectsUnicastGroup(t *testing.T) {
	s := openUDP4(t)
	err := s.McastJoin(netaddr.IPv4(10, 0, 0, 1, 0), netaddr.IPv4(127, 0, 0, 1, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, unix.EINVAL)

	err = s.McastJoin(netaddr.SockAddr{}, netaddr.SockAddr{})
	assert.ErrorIs(t, err, unix.EAFNOSUPPORT)
}

func TestMulticastJoinLoopback(t *testing.T) {
	s := openUDP4(t)
	addr := netaddr.Any(netaddr.INet, 0)
	require.NoError(t, s.Bind(&addr))
	err := s.McastJoin(netaddr.MustParse("239.255.0.1:0"), netaddr.IPv4(127, 0, 0, 1, 0))
	if errors.Is(err, unix.ENODEV) {
		t.Skip("no multicast-capable loopback")
	}
	assert.NoError(t, err)
}

func TestDatagramRoundTrip(t *testing.T) {
	rx := openUDP4(t)
	to := netaddr.IPv4(127, 0, 0, 1, 0)
	require.NoError(t, rx.Bind(&to))

	tx := openUDP4(t)
	from := netaddr.IPv4(127, 0, 0, 1, 0)
	require.NoError(t, tx.Bind(&from))
	require.NoError(t, tx.SendTo([]byte("beacon"), to))

	buf := make([]byte, 64)
	n, peer, err := rx.RecvFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "beacon", string(buf[:n]))
	assert.Equal(t, from, peer)
}

func TestNonblockingRecvWouldBlock(t *testing.T) {
	s := openUDP4(t)
	addr := netaddr.IPv4(127, 0, 0, 1, 0)
	require.NoError(t, s.Bind(&addr))
	require.NoError(t, s.SetNonblock(true))

	_, _, err := s.RecvFrom(make([]byte, 8))
	assert.ErrorIs(t, err, unix.EAGAIN)
}
