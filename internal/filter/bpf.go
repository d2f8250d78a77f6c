// Package filter runs classic BPF programs against received frames in userspace.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/net/bpf"
)

const (
	None = "none"
	ARP  = "arp"
	IPv4 = "ip"
	IPv6 = "ip6"

	acceptAll       = 0xFFFF
	offsetEtherType = 12
)

// Filter decides whether a frame should be processed.
type Filter interface {
	Match(frame []byte) bool
}

// RawInstruction mirrors one line of `tcpdump -dd` output.
type RawInstruction struct {
	Op uint16 `mapstructure:"op" yaml:"op"`
	Jt uint8  `mapstructure:"jt" yaml:"jt"`
	Jf uint8  `mapstructure:"jf" yaml:"jf"`
	K  uint32 `mapstructure:"k" yaml:"k"`
}

type passAll struct{}

func (passAll) Match([]byte) bool { return true }

// VMFilter executes a program in the x/net/bpf interpreter.
type VMFilter struct {
	vm *bpf.VM
}

func (f *VMFilter) Match(frame []byte) bool {
	n, err := f.vm.Run(frame)
	return err == nil && n > 0
}

// New builds a Filter from a named program, or from raw instructions when
// raw is non-empty.
func New(name string, raw []RawInstruction) (Filter, error) {
	var (
		f   *VMFilter
		err error
	)
	switch {
	case len(raw) > 0:
		f, err = FromRaw(raw)
	case strings.EqualFold(name, ARP):
		f, err = EtherType(0x0806)
	case strings.EqualFold(name, IPv4):
		f, err = EtherType(0x0800)
	case strings.EqualFold(name, IPv6):
		f, err = EtherType(0x86DD)
	case name == "" || strings.EqualFold(name, None):
		return passAll{}, nil
	default:
		return nil, fmt.Errorf("unknown filter %q (want none, arp, ip or ip6)", name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Known reports whether name is a built-in filter.
func Known(name string) bool {
	switch strings.ToLower(name) {
	case "", None, ARP, IPv4, IPv6:
		return true
	}
	return false
}

// EtherType accepts frames whose type field equals code.
func EtherType(code uint16) (*VMFilter, error) {
	return compile([]bpf.Instruction{
		bpf.LoadAbsolute{Off: offsetEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(code), SkipFalse: 1},
		bpf.RetConstant{Val: acceptAll},
		bpf.RetConstant{Val: 0},
	})
}

// FromRaw loads a program produced by an external compiler such as `tcpdump -dd`.
func FromRaw(raw []RawInstruction) (*VMFilter, error) {
	insts := make([]bpf.Instruction, len(raw))
	for i, r := range raw {
		insts[i] = bpf.RawInstruction{Op: r.Op, Jt: r.Jt, Jf: r.Jf, K: r.K}.Disassemble()
	}
	return compile(insts)
}

func compile(insts []bpf.Instruction) (*VMFilter, error) {
	vm, err := bpf.NewVM(insts)
	if err != nil {
		return nil, fmt.Errorf("failed to load BPF program: %w", err)
	}
	return &VMFilter{vm: vm}, nil
}
