//go:build !linux
// +build !linux

// File: core/socket/socket_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package socket

import (
	"syscall"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/netaddr"
)

func closeFD(fd int) error { return syscall.Close(fd) }

// Open is only implemented on Linux.
func Open(domain, typ, proto int) (*Socket, error) {
	return nil, newError("socket", "", api.ErrNotSupported)
}

func OpenUDP(f netaddr.Family) (*Socket, error) { return Open(0, 0, 0) }
func OpenTCP(f netaddr.Family) (*Socket, error) { return Open(0, 0, 0) }

func (s *Socket) unsupported(op string) error {
	if !s.Valid() {
		return ErrInvalid
	}
	return newError(op, "", api.ErrNotSupported)
}

func (s *Socket) Domain() (int, error)              { return 0, s.unsupported("getsockopt") }
func (s *Socket) Bind(addr *netaddr.SockAddr) error { return s.unsupported("bind") }
func (s *Socket) LocalAddr() (netaddr.SockAddr, error) {
	return netaddr.SockAddr{}, s.unsupported("getsockname")
}
func (s *Socket) SetNonblock(on bool) error                   { return s.unsupported("fcntl") }
func (s *Socket) SetReuseAddr(on bool) error                  { return s.unsupported("setsockopt") }
func (s *Socket) McastJoin(grp, iface netaddr.SockAddr) error { return s.unsupported("mcast_join") }
func (s *Socket) McastTTL(ttl uint) error                     { return s.unsupported("mcast_ttl") }
func (s *Socket) McastLoop(enable bool) error                 { return s.unsupported("mcast_loop") }
func (s *Socket) McastIface(iface netaddr.SockAddr) error     { return s.unsupported("mcast_iface") }
func (s *Socket) GetInt(level, opt int) (int, error)          { return 0, s.unsupported("getsockopt") }
func (s *Socket) Listen(backlog int) error                    { return s.unsupported("listen") }
func (s *Socket) Connect(addr netaddr.SockAddr) error         { return s.unsupported("connect") }
func (s *Socket) SendTo(p []byte, to netaddr.SockAddr) error  { return s.unsupported("sendto") }
func (s *Socket) Accept() (*Socket, netaddr.SockAddr, error) {
	return nil, netaddr.SockAddr{}, s.unsupported("accept")
}
func (s *Socket) RecvFrom(p []byte) (int, netaddr.SockAddr, error) {
	return 0, netaddr.SockAddr{}, s.unsupported("recvfrom")
}
