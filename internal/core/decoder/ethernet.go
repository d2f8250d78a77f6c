// Package decoder implements zero-copy views over Ethernet II frames and ARP messages.
package decoder

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/tapwatch/internal/core"
)

const (
	// EthernetHeaderLen is the fixed Ethernet II header size.
	EthernetHeaderLen = 14

	ethDstOffset  = 0
	ethSrcOffset  = 6
	ethTypeOffset = 12
)

// EtherType wire codes
const (
	etherTypeCodeIPv4 = 0x0800
	etherTypeCodeARP  = 0x0806
	etherTypeCodeIPv6 = 0x86DD
)

// EtherType is the closed set of payload protocols this decoder recognizes.
type EtherType uint8

const (
	EtherTypeUnknown EtherType = iota
	EtherTypeIPv4
	EtherTypeARP
	EtherTypeIPv6
)

// DecodeEtherType maps a 16-bit wire code onto the closed set.
// Codes outside the set yield EtherTypeUnknown.
func DecodeEtherType(code uint16) EtherType {
	switch code {
	case etherTypeCodeIPv4:
		return EtherTypeIPv4
	case etherTypeCodeARP:
		return EtherTypeARP
	case etherTypeCodeIPv6:
		return EtherTypeIPv6
	default:
		return EtherTypeUnknown
	}
}

func (t EtherType) String() string {
	switch t {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	case EtherTypeIPv6:
		return "IPv6"
	default:
		return "Unknown"
	}
}

// EthernetFrame is a read-only view over a received frame. It borrows the
// buffer it was built from; the buffer must not be mutated while the view is in use.
type EthernetFrame struct {
	buf []byte
}

// NewEthernetFrame wraps buf. A buffer shorter than the Ethernet header is a
// caller bug and panics; use Decode for untrusted input.
func NewEthernetFrame(buf []byte) EthernetFrame {
	if len(buf) < EthernetHeaderLen {
		panic(fmt.Sprintf("decoder: ethernet frame needs %d bytes, got %d", EthernetHeaderLen, len(buf)))
	}
	return EthernetFrame{buf: buf}
}

// Destination returns bytes 0-5.
func (f EthernetFrame) Destination() core.MACAddress {
	return core.MACAddressFrom(f.buf[ethDstOffset:ethSrcOffset])
}

// Source returns bytes 6-11.
func (f EthernetFrame) Source() core.MACAddress {
	return core.MACAddressFrom(f.buf[ethSrcOffset:ethTypeOffset])
}

// EtherTypeCode returns the raw big-endian type field.
func (f EthernetFrame) EtherTypeCode() uint16 {
	return binary.BigEndian.Uint16(f.buf[ethTypeOffset:EthernetHeaderLen])
}

func (f EthernetFrame) EtherType() EtherType {
	return DecodeEtherType(f.EtherTypeCode())
}

// Payload returns everything after the header without copying.
func (f EthernetFrame) Payload() []byte {
	return f.buf[EthernetHeaderLen:]
}

// Len is the total frame length including the header.
func (f EthernetFrame) Len() int {
	return len(f.buf)
}
