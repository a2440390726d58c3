// File: core/netaddr/sockaddr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SockAddr is the value-type socket address shared by the socket wrapper and
// the wire codecs.

package netaddr

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Family tags the address kind.
type Family int

const (
	Unspec Family = iota
	INet
	INet6
)

func (f Family) String() string {
	switch f {
	case INet:
		return "inet"
	case INet6:
		return "inet6"
	default:
		return "unspec"
	}
}

// SockAddr holds an IPv4 or IPv6 address and port. The zero value is Unspec.
type SockAddr struct {
	ap netip.AddrPort
}

// New wraps addr and port. IPv4-mapped IPv6 addresses keep the IPv6 family.
func New(addr netip.Addr, port uint16) SockAddr {
	return SockAddr{ap: netip.AddrPortFrom(addr, port)}
}

// FromAddrPort wraps ap.
func FromAddrPort(ap netip.AddrPort) SockAddr { return SockAddr{ap: ap} }

// IPv4 builds an INet address from four octets.
func IPv4(a, b, c, d byte, port uint16) SockAddr {
	return New(netip.AddrFrom4([4]byte{a, b, c, d}), port)
}

// Any returns the wildcard address of the given family.
func Any(f Family, port uint16) SockAddr {
	switch f {
	case INet:
		return New(netip.IPv4Unspecified(), port)
	case INet6:
		return New(netip.IPv6Unspecified(), port)
	}
	return SockAddr{}
}

// Parse accepts "host", "host:port", "[v6]:port" and "v6%zone".
func Parse(s string) (SockAddr, error) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return SockAddr{ap: ap}, nil
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return New(a, 0), nil
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return SockAddr{}, fmt.Errorf("netaddr: parse %q: %w", s, err)
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return SockAddr{}, fmt.Errorf("netaddr: parse %q: %w", s, err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return SockAddr{}, fmt.Errorf("netaddr: parse port %q: %w", port, err)
	}
	return New(a, uint16(p)), nil
}

// MustParse is Parse that panics, for tests and constants.
func MustParse(s string) SockAddr {
	sa, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sa
}

// Family reports the address family.
func (s SockAddr) Family() Family {
	a := s.ap.Addr()
	switch {
	case !a.IsValid():
		return Unspec
	case a.Is4():
		return INet
	default:
		return INet6
	}
}

// Addr returns the IP part.
func (s SockAddr) Addr() netip.Addr { return s.ap.Addr() }

// Port returns the port.
func (s SockAddr) Port() uint16 { return s.ap.Port() }

// AddrPort returns the underlying value.
func (s SockAddr) AddrPort() netip.AddrPort { return s.ap }

// WithPort returns a copy with the port replaced.
func (s SockAddr) WithPort(port uint16) SockAddr {
	return SockAddr{ap: netip.AddrPortFrom(s.ap.Addr(), port)}
}

// IsMulticast reports whether the IP is a multicast group.
func (s SockAddr) IsMulticast() bool { return s.ap.Addr().IsMulticast() }

// IsAny reports whether the IP is the family wildcard.
func (s SockAddr) IsAny() bool { return s.ap.Addr().IsUnspecified() }

// Zone returns the IPv6 scope zone, if any.
func (s SockAddr) Zone() string { return s.ap.Addr().Zone() }

func (s SockAddr) String() string {
	if s.Family() == Unspec {
		return "<unspec>"
	}
	return s.ap.String()
}
