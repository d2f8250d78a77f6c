package decoder

import (
	"fmt"
	"strings"

	"firestige.xyz/tapwatch/internal/core"
)

// Decoder turns a received frame into a Packet summary.
type Decoder interface {
	Decode(data []byte) (Packet, error)
}

// Packet is the copied-out result of decoding one frame. Unlike the views it
// does not reference the receive buffer.
type Packet struct {
	Destination   core.MACAddress
	Source        core.MACAddress
	EtherType     EtherType
	EtherTypeCode uint16
	Length        int
	ARP           *ARPMessage // nil unless EtherType is ARP
}

// ARPMessage holds the decoded ARP header and, when the header announces
// Ethernet/IPv4, the address block.
type ARPMessage struct {
	HardwareType     HardwareType
	HardwareTypeCode uint16
	ProtocolType     EtherType
	ProtocolTypeCode uint16
	Operation        Operation
	OperationCode    uint16

	HasAddresses   bool
	SourceMAC      core.MACAddress
	SourceIP       core.IPAddress
	DestinationMAC core.MACAddress
	DestinationIP  core.IPAddress
}

// StandardDecoder validates lengths before building each view so that
// truncated frames surface as core.ErrPacketTooShort instead of a panic.
type StandardDecoder struct{}

func NewStandardDecoder() *StandardDecoder {
	return &StandardDecoder{}
}

// Decode is the package-level shorthand for StandardDecoder.Decode.
func Decode(data []byte) (Packet, error) {
	return (&StandardDecoder{}).Decode(data)
}

func (d *StandardDecoder) Decode(data []byte) (Packet, error) {
	if len(data) < EthernetHeaderLen {
		return Packet{}, fmt.Errorf("ethernet header: %w (%d bytes)", core.ErrPacketTooShort, len(data))
	}

	frame := NewEthernetFrame(data)
	pkt := Packet{
		Destination:   frame.Destination(),
		Source:        frame.Source(),
		EtherType:     frame.EtherType(),
		EtherTypeCode: frame.EtherTypeCode(),
		Length:        frame.Len(),
	}

	if pkt.EtherType != EtherTypeARP {
		return pkt, nil
	}

	msg, err := decodeARP(frame.Payload())
	if err != nil {
		return pkt, err
	}
	pkt.ARP = msg
	return pkt, nil
}

func decodeARP(data []byte) (*ARPMessage, error) {
	if len(data) < ArpHeaderLen {
		return nil, fmt.Errorf("arp header: %w (%d bytes)", core.ErrPacketTooShort, len(data))
	}

	hdr := NewArpHeader(data)
	msg := &ARPMessage{
		HardwareType:     hdr.HardwareType(),
		HardwareTypeCode: hdr.HardwareTypeCode(),
		ProtocolType:     hdr.ProtocolType(),
		ProtocolTypeCode: hdr.ProtocolTypeCode(),
		Operation:        hdr.Operation(),
		OperationCode:    hdr.OperationCode(),
	}

	if msg.HardwareType != HardwareTypeEthernet || msg.ProtocolType != EtherTypeIPv4 {
		return msg, nil
	}
	if len(hdr.Payload()) < ArpPayloadLen {
		return msg, fmt.Errorf("arp payload: %w (%d bytes)", core.ErrPacketTooShort, len(hdr.Payload()))
	}

	payload, _ := ArpPayloadFromHeader(hdr)
	msg.HasAddresses = true
	msg.SourceMAC = payload.SourceMAC()
	msg.SourceIP = payload.SourceIP()
	msg.DestinationMAC = payload.DestinationMAC()
	msg.DestinationIP = payload.DestinationIP()
	return msg, nil
}

// String renders a single-line summary, e.g.
// "aa:bb:cc:dd:ee:ff > ff:ff:ff:ff:ff:ff ARP len=42 Request who-has 10.0.0.1 tell 10.0.0.5".
func (p Packet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s > %s ", p.Source, p.Destination)
	if p.EtherType == EtherTypeUnknown {
		fmt.Fprintf(&b, "0x%04x", p.EtherTypeCode)
	} else {
		b.WriteString(p.EtherType.String())
	}
	fmt.Fprintf(&b, " len=%d", p.Length)
	if p.ARP != nil {
		b.WriteByte(' ')
		b.WriteString(p.ARP.String())
	}
	return b.String()
}

func (m *ARPMessage) String() string {
	if !m.HasAddresses {
		return fmt.Sprintf("[ARP: htype=0x%04x ptype=0x%04x op=0x%04x]",
			m.HardwareTypeCode, m.ProtocolTypeCode, m.OperationCode)
	}
	switch m.Operation {
	case OperationRequest:
		return fmt.Sprintf("Request who-has %s tell %s", m.DestinationIP, m.SourceIP)
	case OperationReply:
		return fmt.Sprintf("Reply %s is-at %s", m.SourceIP, m.SourceMAC)
	default:
		return fmt.Sprintf("op=0x%04x %s (%s) -> %s (%s)",
			m.OperationCode, m.SourceIP, m.SourceMAC, m.DestinationIP, m.DestinationMAC)
	}
}
