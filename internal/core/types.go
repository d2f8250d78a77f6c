// Package core defines the link-layer address value types with zero external dependencies.
package core

import (
	"fmt"
	"net"
	"net/netip"
)

const (
	// MACAddressLen is the length of an Ethernet hardware address.
	MACAddressLen = 6
	// IPAddressLen is the length of an IPv4 protocol address.
	IPAddressLen = 4
)

// MACAddress is an immutable 6-byte Ethernet hardware address.
type MACAddress [MACAddressLen]byte

// MACAddressFrom copies an exact 6-byte slice into a MACAddress.
// Any other length is a decoder bug and panics.
func MACAddressFrom(b []byte) MACAddress {
	if len(b) != MACAddressLen {
		panic(fmt.Sprintf("core: MAC address needs %d bytes, got %d", MACAddressLen, len(b)))
	}
	var m MACAddress
	copy(m[:], b)
	return m
}

// ParseMAC parses the canonical colon-separated hex form (aa:bb:cc:dd:ee:ff).
func ParseMAC(s string) (MACAddress, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MACAddress{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(hw) != MACAddressLen {
		return MACAddress{}, fmt.Errorf("%w: %q is not a 48-bit MAC", ErrInvalidAddress, s)
	}
	return MACAddressFrom(hw), nil
}

// String renders six colon-separated two-digit lower-case hex octets.
func (m MACAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsBroadcast reports whether m is ff:ff:ff:ff:ff:ff.
func (m MACAddress) IsBroadcast() bool {
	return m == MACAddress{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// IPAddress is an immutable 4-byte IPv4 address.
type IPAddress [IPAddressLen]byte

// IPAddressFrom copies an exact 4-byte slice into an IPAddress.
// Any other length is a decoder bug and panics.
func IPAddressFrom(b []byte) IPAddress {
	if len(b) != IPAddressLen {
		panic(fmt.Sprintf("core: IPv4 address needs %d bytes, got %d", IPAddressLen, len(b)))
	}
	var ip IPAddress
	copy(ip[:], b)
	return ip
}

// String renders four dot-separated decimal octets.
func (ip IPAddress) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// Addr converts to the stdlib value type.
func (ip IPAddress) Addr() netip.Addr {
	return netip.AddrFrom4(ip)
}
