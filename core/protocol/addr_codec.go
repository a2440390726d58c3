// File: core/protocol/addr_codec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-width 16-byte address field using the IPv4-mapped-IPv6 layout
// (::ffff:a.b.c.d). Both directions always move the cursor by AddrWireSize;
// the buffer's sticky fault flag is the only failure signal.

package protocol

import (
	"net/netip"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/core/netaddr"
)

// AddrWireSize is the encoded size of an address field.
const AddrWireSize = 16

// v4MappedPrefix is bytes 0..11 of an IPv4-mapped IPv6 address.
var v4MappedPrefix = [12]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff}

// ToWire encodes addr at the cursor. Ports and zones are not encoded.
func ToWire(buf api.WireBuffer, addr netaddr.SockAddr) {
	if !buf.Ensure(AddrWireSize) {
		buf.Fault()
		buf.Skip(AddrWireSize)
		return
	}

	switch addr.Family() {
	case netaddr.INet:
		for i := 0; i < 10; i++ {
			buf.SetAt(i, 0)
		}
		buf.SetAt(10, 0xff)
		buf.SetAt(11, 0xff)
		a4 := addr.Addr().As4()
		copy(buf.Save()[12:AddrWireSize], a4[:])

	case netaddr.INet6:
		a16 := addr.Addr().As16()
		copy(buf.Save()[:AddrWireSize], a16[:])

	default:
		// unspec goes out as ::
		for i := 0; i < AddrWireSize; i++ {
			buf.SetAt(i, 0)
		}
	}
	buf.Skip(AddrWireSize)
}

// FromWire decodes an address at the cursor into addr. On fault addr is left
// untouched. The decoded port is zero and any zone is dropped.
func FromWire(buf api.WireBuffer, addr *netaddr.SockAddr) {
	if !buf.Ensure(AddrWireSize) {
		buf.Fault()
		buf.Skip(AddrWireSize)
		return
	}

	mapped := true
	for i := range v4MappedPrefix {
		mapped = mapped && buf.At(i) == v4MappedPrefix[i]
	}

	raw := buf.Save()
	if mapped {
		var a4 [4]byte
		copy(a4[:], raw[12:AddrWireSize])
		*addr = netaddr.New(netip.AddrFrom4(a4), 0)
	} else {
		var a16 [16]byte
		copy(a16[:], raw[:AddrWireSize])
		*addr = netaddr.New(netip.AddrFrom16(a16), 0)
	}
	buf.Skip(AddrWireSize)
}
