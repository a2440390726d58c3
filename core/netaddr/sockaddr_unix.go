//go:build unix

// File: core/netaddr/sockaddr_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Conversions between SockAddr and x/sys/unix socket addresses.

package netaddr

import (
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Sockaddr converts to the raw form accepted by bind/sendto. Unspec yields nil.
func (s SockAddr) Sockaddr() unix.Sockaddr {
	switch s.Family() {
	case INet:
		return &unix.SockaddrInet4{Port: int(s.Port()), Addr: s.Addr().As4()}
	case INet6:
		return &unix.SockaddrInet6{
			Port:   int(s.Port()),
			Addr:   s.Addr().As16(),
			ZoneId: ZoneIndex(s.Zone()),
		}
	}
	return nil
}

// FromSockaddr converts a raw address. Unknown kinds yield Unspec.
func FromSockaddr(sa unix.Sockaddr) SockAddr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return New(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		a := netip.AddrFrom16(v.Addr)
		if v.ZoneId != 0 {
			a = a.WithZone(zoneName(v.ZoneId))
		}
		return New(a, uint16(v.Port))
	}
	return SockAddr{}
}

// ZoneIndex resolves an IPv6 zone (interface name or number) to an index.
func ZoneIndex(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index)
	}
	return 0
}

func zoneName(idx uint32) string {
	if ifi, err := net.InterfaceByIndex(int(idx)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(idx), 10)
}
