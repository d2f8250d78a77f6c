// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"time"

	"firestige.xyz/tapwatch/internal/core"
	"firestige.xyz/tapwatch/internal/filter"
	"firestige.xyz/tapwatch/internal/log"
	"firestige.xyz/tapwatch/internal/tap"
)

// Config is the full runtime configuration, rooted at `tapwatch:` in YAML.
type Config struct {
	Device   DeviceConfig     `mapstructure:"device" yaml:"device"`
	Dispatch DispatchConfig   `mapstructure:"dispatch" yaml:"dispatch"`
	Metrics  MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Log      log.LoggerConfig `mapstructure:"log" yaml:"log"`
}

// DeviceConfig describes the TAP interface to create.
type DeviceConfig struct {
	Name          string        `mapstructure:"name" yaml:"name"`
	MTU           int           `mapstructure:"mtu" yaml:"mtu"`
	Headroom      int           `mapstructure:"headroom" yaml:"headroom"`
	Address       string        `mapstructure:"address" yaml:"address,omitempty"` // CIDR or bare IP; empty = leave unconfigured
	ConfigureLink bool          `mapstructure:"configure_link" yaml:"configure_link"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
}

// DispatchConfig controls what happens to each received frame.
type DispatchConfig struct {
	Filter     string                  `mapstructure:"filter" yaml:"filter"` // none | arp | ip | ip6
	BPF        []filter.RawInstruction `mapstructure:"bpf" yaml:"bpf,omitempty"`
	PcapPath   string                  `mapstructure:"pcap_path" yaml:"pcap_path,omitempty"`
	LogUnknown bool                    `mapstructure:"log_unknown" yaml:"log_unknown"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// TapOptions converts the device section for tap.Open.
func (c *Config) TapOptions() tap.Options {
	return tap.Options{MTU: c.Device.MTU, Headroom: c.Device.Headroom}
}

// Validate checks values that would otherwise fail late, at device or filter setup.
func (c *Config) Validate() error {
	if err := tap.ValidateName(c.Device.Name); err != nil {
		return fmt.Errorf("%w: device.name: %w", core.ErrConfigInvalid, err)
	}
	if c.Device.MTU < 68 || c.Device.MTU > 65535 {
		return fmt.Errorf("%w: device.mtu %d out of range [68, 65535]", core.ErrConfigInvalid, c.Device.MTU)
	}
	if c.Device.Headroom < 0 {
		return fmt.Errorf("%w: device.headroom must not be negative", core.ErrConfigInvalid)
	}
	if c.Device.WaitTimeout <= 0 {
		return fmt.Errorf("%w: device.wait_timeout must be positive", core.ErrConfigInvalid)
	}
	if c.Device.Address != "" {
		if _, err := tap.ParseAddress(c.Device.Address); err != nil {
			return fmt.Errorf("%w: device.address: %w", core.ErrConfigInvalid, err)
		}
	}
	if len(c.Dispatch.BPF) == 0 && !filter.Known(c.Dispatch.Filter) {
		return fmt.Errorf("%w: dispatch.filter %q (must be none/arp/ip/ip6)", core.ErrConfigInvalid, c.Dispatch.Filter)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}
	return nil
}
