package tap

import (
	"bytes"
	"context"
	"fmt"
	"net/netip"
	"os/exec"

	"firestige.xyz/tapwatch/internal/core"
	"firestige.xyz/tapwatch/internal/log"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LinkConfigurator assigns an address to a bound interface and brings it up
// by shelling out to iproute2.
type LinkConfigurator struct {
	runner Runner
	ipPath string
}

func NewLinkConfigurator() *LinkConfigurator {
	return NewLinkConfiguratorWithRunner(execRunner{})
}

func NewLinkConfiguratorWithRunner(r Runner) *LinkConfigurator {
	return &LinkConfigurator{runner: r, ipPath: "ip"}
}

// ParseAddress accepts "10.0.0.1/24" or a bare address, which gets a host-length prefix.
func ParseAddress(s string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q", core.ErrInvalidAddress, s)
	}
	return netip.PrefixFrom(a, a.BitLen()), nil
}

// AssignAddress runs `ip addr add <addr> dev <name>`.
func (c *LinkConfigurator) AssignAddress(ctx context.Context, name, addr string) error {
	prefix, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	return c.run(ctx, "addr", "add", prefix.String(), "dev", name)
}

// LinkUp runs `ip link set dev <name> up`.
func (c *LinkConfigurator) LinkUp(ctx context.Context, name string) error {
	return c.run(ctx, "link", "set", "dev", name, "up")
}

// Configure assigns addr (when non-empty) and then activates the link.
func (c *LinkConfigurator) Configure(ctx context.Context, name, addr string) error {
	if addr != "" {
		if err := c.AssignAddress(ctx, name, addr); err != nil {
			return err
		}
	}
	return c.LinkUp(ctx, name)
}

func (c *LinkConfigurator) run(ctx context.Context, args ...string) error {
	log.GetLogger().Debugf("exec %s %v", c.ipPath, args)
	out, err := c.runner.Run(ctx, c.ipPath, args...)
	if err != nil {
		return fmt.Errorf("%w: %s %v: %v: %s", core.ErrLinkConfigFailed, c.ipPath, args, err, bytes.TrimSpace(out))
	}
	return nil
}
