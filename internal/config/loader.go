package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"firestige.xyz/tapwatch/internal/log"
	"firestige.xyz/tapwatch/internal/tap"
)

const rootKey = "tapwatch"

// configRoot is the top-level wrapper matching the YAML structure `tapwatch: ...`.
type configRoot struct {
	Tapwatch Config `mapstructure:"tapwatch" yaml:"tapwatch"`
}

// Load reads path (optional) and applies defaults and TAPWATCH_* env overrides,
// e.g. TAPWATCH_DEVICE_MTU=9000.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Tapwatch

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	key := func(k string) string { return rootKey + "." + k }

	// Device defaults
	v.SetDefault(key("device.name"), "tap0")
	v.SetDefault(key("device.mtu"), tap.DefaultMTU)
	v.SetDefault(key("device.headroom"), tap.DefaultHeadroom)
	v.SetDefault(key("device.address"), "")
	v.SetDefault(key("device.configure_link"), false)
	v.SetDefault(key("device.wait_timeout"), "1s")

	// Dispatch defaults
	v.SetDefault(key("dispatch.filter"), "none")
	v.SetDefault(key("dispatch.pcap_path"), "")
	v.SetDefault(key("dispatch.log_unknown"), false)

	// Metrics defaults
	v.SetDefault(key("metrics.enabled"), false)
	v.SetDefault(key("metrics.listen"), ":9091")
	v.SetDefault(key("metrics.path"), "/metrics")

	// Log defaults
	v.SetDefault(key("log.level"), "info")
	v.SetDefault(key("log.pattern"), log.DefaultPattern)
	v.SetDefault(key("log.time"), log.DefaultTimeLayout)
	v.SetDefault(key("log.caller"), false)
	v.SetDefault(key("log.appenders"), []map[string]interface{}{{"type": log.AppenderConsole}})
}

// Dump writes the effective configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(configRoot{Tapwatch: *c}); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
