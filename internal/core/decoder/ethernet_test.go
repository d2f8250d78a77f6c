package decoder

import (
	"bytes"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tapwatch/internal/core"
)

func TestEthernetFrameBasic(t *testing.T) {
	data := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, // Dst MAC
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // Src MAC
		0x08, 0x00, // EtherType: IPv4
		0x45, 0x00, // Payload (start of IP header)
	}

	frame := NewEthernetFrame(data)

	assert.Equal(t, core.MACAddress{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, frame.Destination())
	assert.Equal(t, core.MACAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, frame.Source())
	assert.Equal(t, EtherTypeIPv4, frame.EtherType())
	assert.Equal(t, uint16(0x0800), frame.EtherTypeCode())
	assert.Equal(t, []byte{0x45, 0x00}, frame.Payload())
	assert.Equal(t, len(data), frame.Len())
}

func TestEthernetFrameHeaderOnly(t *testing.T) {
	data := make([]byte, EthernetHeaderLen)
	frame := NewEthernetFrame(data)
	assert.Empty(t, frame.Payload())
}

func TestEthernetFrameTooShortPanics(t *testing.T) {
	data := make([]byte, EthernetHeaderLen-1)
	assert.Panics(t, func() { NewEthernetFrame(data) })
	assert.Panics(t, func() { NewEthernetFrame(nil) })
}

func TestEthernetFramePayloadIsZeroCopy(t *testing.T) {
	data := make([]byte, 20)
	frame := NewEthernetFrame(data)
	data[EthernetHeaderLen] = 0x7F
	assert.Equal(t, byte(0x7F), frame.Payload()[0])
}

func TestDecodeEtherType(t *testing.T) {
	tests := []struct {
		code     uint16
		expected EtherType
		name     string
	}{
		{0x0800, EtherTypeIPv4, "IPv4"},
		{0x0806, EtherTypeARP, "ARP"},
		{0x86DD, EtherTypeIPv6, "IPv6"},
		{0x1234, EtherTypeUnknown, "Unknown"},
		{0x8100, EtherTypeUnknown, "Unknown"},
		{0x0000, EtherTypeUnknown, "Unknown"},
		{0xFFFF, EtherTypeUnknown, "Unknown"},
	}

	for _, tt := range tests {
		got := DecodeEtherType(tt.code)
		assert.Equal(t, tt.expected, got, "code 0x%04x", tt.code)
		assert.Equal(t, tt.name, got.String())
	}
}

func TestEthernetFrameUnknownEtherType(t *testing.T) {
	data := make([]byte, 60)
	data[12], data[13] = 0x12, 0x34

	frame := NewEthernetFrame(data)
	assert.Equal(t, EtherTypeUnknown, frame.EtherType())
	assert.Equal(t, uint16(0x1234), frame.EtherTypeCode())
}

func TestEthernetFrameIdempotent(t *testing.T) {
	data := buildEthernet(t, layers.EthernetTypeIPv6, []byte{1, 2, 3, 4})
	orig := append([]byte(nil), data...)

	first := NewEthernetFrame(data)
	second := NewEthernetFrame(data)

	assert.Equal(t, first.Destination(), second.Destination())
	assert.Equal(t, first.Source(), second.Source())
	assert.Equal(t, first.EtherType(), second.EtherType())
	assert.True(t, bytes.Equal(first.Payload(), second.Payload()))
	assert.Equal(t, orig, data, "decoding must not mutate the buffer")
}

func TestEthernetFrameMatchesGopacket(t *testing.T) {
	for _, et := range []layers.EthernetType{
		layers.EthernetTypeIPv4, layers.EthernetTypeARP, layers.EthernetTypeIPv6, layers.EthernetType(0x1234),
	} {
		data := buildEthernet(t, et, []byte{0xde, 0xad, 0xbe, 0xef})

		pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
		ref, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
		require.True(t, ok)

		frame := NewEthernetFrame(data)
		assert.Equal(t, ref.DstMAC.String(), frame.Destination().String())
		assert.Equal(t, ref.SrcMAC.String(), frame.Source().String())
		assert.Equal(t, uint16(ref.EthernetType), frame.EtherTypeCode())
		assert.Equal(t, ref.Payload, frame.Payload())
	}
}

// buildEthernet serializes an Ethernet II frame with gopacket. Short payloads
// are padded to the 60-byte minimum by the encoder.
func buildEthernet(t testing.TB, et layers.EthernetType, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
		DstMAC:       []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		EthernetType: et,
	}
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, eth, gopacket.Payload(payload))
	require.NoError(t, err)
	return buf.Bytes()
}

func BenchmarkEthernetFrame(b *testing.B) {
	data := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
		0x08, 0x06,
		0x00, 0x01,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		frame := NewEthernetFrame(data)
		if frame.EtherType() != EtherTypeARP {
			b.Fatal("unexpected ethertype")
		}
	}
}
