package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameWithType(hi, lo byte) []byte {
	f := make([]byte, 60)
	f[12], f[13] = hi, lo
	return f
}

func TestNamedFilters(t *testing.T) {
	arp := frameWithType(0x08, 0x06)
	ip := frameWithType(0x08, 0x00)
	ip6 := frameWithType(0x86, 0xDD)

	tests := []struct {
		name string
		arp  bool
		ip   bool
		ip6  bool
	}{
		{None, true, true, true},
		{"", true, true, true},
		{ARP, true, false, false},
		{"ARP", true, false, false},
		{IPv4, false, true, false},
		{IPv6, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.name, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.arp, f.Match(arp))
			assert.Equal(t, tt.ip, f.Match(ip))
			assert.Equal(t, tt.ip6, f.Match(ip6))
		})
	}
}

func TestUnknownFilter(t *testing.T) {
	_, err := New("tcp port 80", nil)
	assert.Error(t, err)
	assert.False(t, Known("tcp port 80"))
	assert.True(t, Known("arp"))
}

func TestShortFrameRejected(t *testing.T) {
	f, err := New(ARP, nil)
	require.NoError(t, err)
	assert.False(t, f.Match([]byte{0x00, 0x01}))
}

func TestFromRawTcpdumpArp(t *testing.T) {
	// tcpdump -dd arp
	raw := []RawInstruction{
		{Op: 0x28, Jt: 0, Jf: 0, K: 0x0000000c},
		{Op: 0x15, Jt: 0, Jf: 1, K: 0x00000806},
		{Op: 0x6, Jt: 0, Jf: 0, K: 0x00040000},
		{Op: 0x6, Jt: 0, Jf: 0, K: 0x00000000},
	}

	f, err := New("ignored", raw)
	require.NoError(t, err)
	assert.True(t, f.Match(frameWithType(0x08, 0x06)))
	assert.False(t, f.Match(frameWithType(0x08, 0x00)))
}

func TestFromRawInvalidProgram(t *testing.T) {
	// jump past the end of the program
	raw := []RawInstruction{
		{Op: 0x15, Jt: 5, Jf: 5, K: 0x0806},
	}
	_, err := FromRaw(raw)
	assert.Error(t, err)
}
