// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package netaddr provides SockAddr, the IPv4/IPv6 address value used by the
// socket wrapper and the address wire codec.
package netaddr
