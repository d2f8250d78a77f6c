package decoder

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/tapwatch/internal/core"
)

const (
	// ArpHeaderLen covers htype, ptype, hlen, plen and oper.
	ArpHeaderLen = 8
	// ArpPayloadLen is the address block size for Ethernet/IPv4.
	ArpPayloadLen = 2*core.MACAddressLen + 2*core.IPAddressLen

	arpHardwareTypeOffset = 0
	arpProtocolTypeOffset = 2
	arpHardwareLenOffset  = 4
	arpProtocolLenOffset  = 5
	arpOperationOffset    = 6

	arpSrcMACOffset = 0
	arpSrcIPOffset  = 6
	arpDstMACOffset = 10
	arpDstIPOffset  = 16
)

// ARP wire codes
const (
	hardwareTypeCodeEthernet = 0x0001

	operationCodeRequest = 0x0001
	operationCodeReply   = 0x0002
)

// HardwareType is the closed set of ARP hardware types.
type HardwareType uint8

const (
	HardwareTypeUnknown HardwareType = iota
	HardwareTypeEthernet
)

func DecodeHardwareType(code uint16) HardwareType {
	if code == hardwareTypeCodeEthernet {
		return HardwareTypeEthernet
	}
	return HardwareTypeUnknown
}

func (t HardwareType) String() string {
	if t == HardwareTypeEthernet {
		return "Ethernet"
	}
	return "Unknown"
}

// Operation is the closed set of ARP opcodes.
type Operation uint8

const (
	OperationUnknown Operation = iota
	OperationRequest
	OperationReply
)

func DecodeOperation(code uint16) Operation {
	switch code {
	case operationCodeRequest:
		return OperationRequest
	case operationCodeReply:
		return OperationReply
	default:
		return OperationUnknown
	}
}

func (o Operation) String() string {
	switch o {
	case OperationRequest:
		return "Request"
	case OperationReply:
		return "Reply"
	default:
		return "Unknown"
	}
}

// ArpHeader is a view over the fixed part of an ARP message, usually
// EthernetFrame.Payload().
type ArpHeader struct {
	buf []byte
}

// NewArpHeader wraps buf. Fewer than ArpHeaderLen bytes panics.
func NewArpHeader(buf []byte) ArpHeader {
	if len(buf) < ArpHeaderLen {
		panic(fmt.Sprintf("decoder: arp header needs %d bytes, got %d", ArpHeaderLen, len(buf)))
	}
	return ArpHeader{buf: buf}
}

func (h ArpHeader) HardwareTypeCode() uint16 {
	return binary.BigEndian.Uint16(h.buf[arpHardwareTypeOffset:arpProtocolTypeOffset])
}

func (h ArpHeader) HardwareType() HardwareType {
	return DecodeHardwareType(h.HardwareTypeCode())
}

func (h ArpHeader) ProtocolTypeCode() uint16 {
	return binary.BigEndian.Uint16(h.buf[arpProtocolTypeOffset:arpHardwareLenOffset])
}

// ProtocolType shares the EtherType code space.
func (h ArpHeader) ProtocolType() EtherType {
	return DecodeEtherType(h.ProtocolTypeCode())
}

// HardwareAddrLen is informational only; payload layout never depends on it.
func (h ArpHeader) HardwareAddrLen() uint8 {
	return h.buf[arpHardwareLenOffset]
}

// ProtocolAddrLen is informational only; payload layout never depends on it.
func (h ArpHeader) ProtocolAddrLen() uint8 {
	return h.buf[arpProtocolLenOffset]
}

func (h ArpHeader) OperationCode() uint16 {
	return binary.BigEndian.Uint16(h.buf[arpOperationOffset:ArpHeaderLen])
}

func (h ArpHeader) Operation() Operation {
	return DecodeOperation(h.OperationCode())
}

// Payload returns the address block following the header.
func (h ArpHeader) Payload() []byte {
	return h.buf[ArpHeaderLen:]
}

func (h ArpHeader) String() string {
	return fmt.Sprintf("[ARP: %s %s %s]", h.HardwareType(), h.ProtocolType(), h.Operation())
}

// ArpPayload is the Ethernet/IPv4 address block of an ARP message.
type ArpPayload struct {
	buf []byte
}

// ArpPayloadFromHeader returns the address block view only when the header
// announces Ethernet hardware and IPv4 protocol addresses. Other combinations
// would need the length fields to locate addresses and report ok=false.
// An eligible header whose payload is shorter than ArpPayloadLen panics.
func ArpPayloadFromHeader(h ArpHeader) (p ArpPayload, ok bool) {
	if h.HardwareType() != HardwareTypeEthernet || h.ProtocolType() != EtherTypeIPv4 {
		return ArpPayload{}, false
	}
	buf := h.Payload()
	if len(buf) < ArpPayloadLen {
		panic(fmt.Sprintf("decoder: arp payload needs %d bytes, got %d", ArpPayloadLen, len(buf)))
	}
	return ArpPayload{buf: buf}, true
}

// SourceMAC is the sender hardware address.
func (p ArpPayload) SourceMAC() core.MACAddress {
	return core.MACAddressFrom(p.buf[arpSrcMACOffset:arpSrcIPOffset])
}

// SourceIP is the sender protocol address.
func (p ArpPayload) SourceIP() core.IPAddress {
	return core.IPAddressFrom(p.buf[arpSrcIPOffset:arpDstMACOffset])
}

// DestinationMAC is the target hardware address, all zero in requests.
func (p ArpPayload) DestinationMAC() core.MACAddress {
	return core.MACAddressFrom(p.buf[arpDstMACOffset:arpDstIPOffset])
}

// DestinationIP is the target protocol address.
func (p ArpPayload) DestinationIP() core.IPAddress {
	return core.IPAddressFrom(p.buf[arpDstIPOffset:ArpPayloadLen])
}
