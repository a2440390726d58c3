//go:build linux
// +build linux

// File: core/socket/socket_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket creation, bind and multicast options via x/sys/unix.

package socket

import (
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-evio/core/netaddr"
)

func closeFD(fd int) error { return unix.Close(fd) }

// Open creates a socket (close-on-exec is always added to typ).
func Open(domain, typ, proto int) (*Socket, error) {
	fd, err := unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		return nil, newError("socket", "", err)
	}
	return FromFD(fd), nil
}

// OpenUDP creates a datagram socket of family f.
func OpenUDP(f netaddr.Family) (*Socket, error) {
	return Open(domainOf(f), unix.SOCK_DGRAM, unix.IPPROTO_UDP)
}

// OpenTCP creates a stream socket of family f.
func OpenTCP(f netaddr.Family) (*Socket, error) {
	return Open(domainOf(f), unix.SOCK_STREAM, unix.IPPROTO_TCP)
}

func domainOf(f netaddr.Family) int {
	if f == netaddr.INet6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

// Domain reports the address family the socket was created with.
func (s *Socket) Domain() (int, error) {
	if !s.Valid() {
		return 0, ErrInvalid
	}
	d, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_DOMAIN)
	if err != nil {
		return 0, newError("getsockopt", "SO_DOMAIN", err)
	}
	return d, nil
}

// Bind binds to addr and writes the bound address (with any ephemeral port)
// back into addr.
func (s *Socket) Bind(addr *netaddr.SockAddr) error {
	if !s.Valid() {
		return ErrInvalid
	}
	sa := addr.Sockaddr()
	if sa == nil {
		return newError("bind", addr.String(), unix.EAFNOSUPPORT)
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return newError("bind", addr.String(), err)
	}
	bound, err := unix.Getsockname(s.fd)
	if err != nil {
		return newError("getsockname", addr.String(), err)
	}
	*addr = netaddr.FromSockaddr(bound)
	return nil
}

// LocalAddr returns the bound address.
func (s *Socket) LocalAddr() (netaddr.SockAddr, error) {
	if !s.Valid() {
		return netaddr.SockAddr{}, ErrInvalid
	}
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return netaddr.SockAddr{}, newError("getsockname", "", err)
	}
	return netaddr.FromSockaddr(sa), nil
}

// SetNonblock toggles O_NONBLOCK.
func (s *Socket) SetNonblock(on bool) error {
	if !s.Valid() {
		return ErrInvalid
	}
	if err := unix.SetNonblock(s.fd, on); err != nil {
		return newError("fcntl", "O_NONBLOCK", err)
	}
	return nil
}

// SetReuseAddr toggles SO_REUSEADDR.
func (s *Socket) SetReuseAddr(on bool) error {
	return s.setInt(unix.SOL_SOCKET, unix.SO_REUSEADDR, boolInt(on), "SO_REUSEADDR")
}

// McastJoin subscribes to grp, receiving datagrams that arrive on iface.
// An Unspec or wildcard iface lets the kernel choose.
func (s *Socket) McastJoin(grp, iface netaddr.SockAddr) error {
	if !s.Valid() {
		return ErrInvalid
	}
	var err error
	switch grp.Family() {
	case netaddr.INet:
		mreq := &unix.IPMreq{Multiaddr: grp.Addr().As4()}
		if iface.Family() == netaddr.INet {
			mreq.Interface = iface.Addr().As4()
		}
		err = unix.SetsockoptIPMreq(s.fd, unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
	case netaddr.INet6:
		idx, ierr := ifaceIndex(iface)
		if ierr != nil {
			return newError("mcast_join", iface.String(), ierr)
		}
		mreq := &unix.IPv6Mreq{Multiaddr: grp.Addr().As16(), Interface: idx}
		err = unix.SetsockoptIPv6Mreq(s.fd, unix.IPPROTO_IPV6, unix.IPV6_JOIN_GROUP, mreq)
	default:
		err = unix.EAFNOSUPPORT
	}
	if err != nil {
		return newError("mcast_join", grp.String(), err)
	}
	return nil
}

// McastTTL sets the hop limit of outgoing multicasts.
func (s *Socket) McastTTL(ttl uint) error {
	d, err := s.Domain()
	if err != nil {
		return err
	}
	if d == unix.AF_INET6 {
		return s.setInt(unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_HOPS, int(ttl), "mcast_ttl")
	}
	return s.setInt(unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, int(ttl), "mcast_ttl")
}

// McastLoop controls local loopback of multicasts sent from this socket.
func (s *Socket) McastLoop(enable bool) error {
	d, err := s.Domain()
	if err != nil {
		return err
	}
	if d == unix.AF_INET6 {
		return s.setInt(unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_LOOP, boolInt(enable), "mcast_loop")
	}
	return s.setInt(unix.IPPROTO_IP, unix.IP_MULTICAST_LOOP, boolInt(enable), "mcast_loop")
}

// McastIface selects the egress interface for outgoing multicasts.
func (s *Socket) McastIface(iface netaddr.SockAddr) error {
	if !s.Valid() {
		return ErrInvalid
	}
	var err error
	switch iface.Family() {
	case netaddr.INet:
		err = unix.SetsockoptInet4Addr(s.fd, unix.IPPROTO_IP, unix.IP_MULTICAST_IF, iface.Addr().As4())
	case netaddr.INet6:
		idx, ierr := ifaceIndex(iface)
		if ierr != nil {
			return newError("mcast_iface", iface.String(), ierr)
		}
		err = unix.SetsockoptInt(s.fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_IF, int(idx))
	default:
		err = unix.EAFNOSUPPORT
	}
	if err != nil {
		return newError("mcast_iface", iface.String(), err)
	}
	return nil
}

// GetInt reads an integer socket option; used to inspect multicast settings.
func (s *Socket) GetInt(level, opt int) (int, error) {
	if !s.Valid() {
		return 0, ErrInvalid
	}
	v, err := unix.GetsockoptInt(s.fd, level, opt)
	if err != nil {
		return 0, newError("getsockopt", "", err)
	}
	return v, nil
}

// Listen marks a stream socket passive.
func (s *Socket) Listen(backlog int) error {
	if !s.Valid() {
		return ErrInvalid
	}
	if err := unix.Listen(s.fd, backlog); err != nil {
		return newError("listen", "", err)
	}
	return nil
}

// Accept takes one pending connection. The new socket is non-blocking.
func (s *Socket) Accept() (*Socket, netaddr.SockAddr, error) {
	if !s.Valid() {
		return nil, netaddr.SockAddr{}, ErrInvalid
	}
	nfd, sa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return nil, netaddr.SockAddr{}, newError("accept", "", err)
	}
	return FromFD(nfd), netaddr.FromSockaddr(sa), nil
}

// Connect starts a connection to addr. On a non-blocking socket the error
// unwraps to EINPROGRESS while the handshake is pending.
func (s *Socket) Connect(addr netaddr.SockAddr) error {
	if !s.Valid() {
		return ErrInvalid
	}
	if err := unix.Connect(s.fd, addr.Sockaddr()); err != nil {
		return newError("connect", addr.String(), err)
	}
	return nil
}

// SendTo sends one datagram.
func (s *Socket) SendTo(p []byte, to netaddr.SockAddr) error {
	if !s.Valid() {
		return ErrInvalid
	}
	if err := unix.Sendto(s.fd, p, 0, to.Sockaddr()); err != nil {
		return newError("sendto", to.String(), err)
	}
	return nil
}

// RecvFrom reads one datagram.
func (s *Socket) RecvFrom(p []byte) (int, netaddr.SockAddr, error) {
	if !s.Valid() {
		return 0, netaddr.SockAddr{}, ErrInvalid
	}
	n, from, err := unix.Recvfrom(s.fd, p, 0)
	if err != nil {
		return 0, netaddr.SockAddr{}, newError("recvfrom", "", err)
	}
	return n, netaddr.FromSockaddr(from), nil
}

func (s *Socket) setInt(level, opt, val int, name string) error {
	if !s.Valid() {
		return ErrInvalid
	}
	if err := unix.SetsockoptInt(s.fd, level, opt, val); err != nil {
		return newError("setsockopt", name, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ifaceIndex resolves an IPv6 interface selector: zone first, then the
// interface owning the address. Unspec and :: select the default (0).
func ifaceIndex(iface netaddr.SockAddr) (uint32, error) {
	if iface.Family() == netaddr.Unspec || (iface.IsAny() && iface.Zone() == "") {
		return 0, nil
	}
	if idx := netaddr.ZoneIndex(iface.Zone()); idx != 0 {
		return idx, nil
	}
	ifs, err := net.Interfaces()
	if err != nil {
		return 0, err
	}
	want := iface.Addr().WithZone("")
	for _, ifi := range ifs {
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				if ip, ok := netip.AddrFromSlice(ipn.IP); ok && ip.Unmap() == want.Unmap() {
					return uint32(ifi.Index), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("no interface with address %s", want)
}
