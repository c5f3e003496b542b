// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/gbdclient/protocol"
)

// StereoChannels is the only channel count the protocol supports.
const StereoChannels = 2

// Plugin holds the keys of an ALSA-style gbd plugin definition.
type Plugin struct {
	IPAddr   string `yaml:"ipaddr"`
	Port     string `yaml:"port"`
	Channels int    `yaml:"channels"`

	// Slave describes the downstream playback device. It is not examined
	// here.
	Slave yaml.Node `yaml:"slave"`

	// Accepted and ignored.
	Type    string `yaml:"type"`
	Comment string `yaml:"comment"`
	Hint    string `yaml:"hint"`
}

// HasSlave reports whether a slave section was present.
func (p *Plugin) HasSlave() bool {
	return p.Slave.Kind != 0
}

// Validate checks the plugin keys. It never touches the network.
func (p *Plugin) Validate() error {
	if p.IPAddr == "" || p.Port == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingAddress)
	}
	if p.Channels != StereoChannels {
		return fmt.Errorf("%w: %w (channels=%d)", ErrInvalidConfig, ErrUnsupportedChannels, p.Channels)
	}

	return nil
}

// Log selects the logger output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Plugin `yaml:",inline"`

	QueueDepth       int           `yaml:"queue_depth"`
	Overflow         string        `yaml:"overflow"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	CloseTimeout     time.Duration `yaml:"close_timeout"`
	ByteOrder        string        `yaml:"byte_order"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	Log              Log           `yaml:"log"`
}

const (
	OverflowDropOldest = "drop_oldest"
	OverflowDropNewest = "drop_newest"

	ByteOrderNative = "native"
	ByteOrderLittle = "little"
	ByteOrderBig    = "big"
)

// Default returns a configuration with every optional key set.
func Default() Config {
	return Config{
		Plugin:      Plugin{Channels: StereoChannels},
		QueueDepth:  32,
		Overflow:    OverflowDropOldest,
		DialTimeout: 2 * time.Second,
		ByteOrder:   ByteOrderNative,
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Parse decodes a YAML document on top of Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func decode(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w", err)
	}

	cfg, err := decode(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	return cfg, cfg.Validate()
}

// ApplyEnv overrides the address from GBD_IPADDR and GBD_PORT and reports
// whether anything changed.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) bool {
	changed := false
	if v, ok := lookup("GBD_IPADDR"); ok && v != "" {
		c.IPAddr = v
		changed = true
	}
	if v, ok := lookup("GBD_PORT"); ok && v != "" {
		c.Port = v
		changed = true
	}

	return changed
}

// Validate checks the whole document.
func (c *Config) Validate() error {
	if err := c.Plugin.Validate(); err != nil {
		return err
	}
	if c.QueueDepth < 0 {
		return fmt.Errorf("%w: queue_depth must not be negative", ErrInvalidConfig)
	}
	if c.WriteTimeout < 0 || c.DialTimeout < 0 || c.HandshakeTimeout < 0 || c.CloseTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}

	switch c.Overflow {
	case OverflowDropOldest, OverflowDropNewest:
	default:
		return fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidConfig, c.Overflow)
	}

	if _, err := c.Codec(); err != nil {
		return err
	}

	return nil
}

// Codec returns the wire codec selected by byte_order.
func (c *Config) Codec() (protocol.Codec, error) {
	switch c.ByteOrder {
	case "", ByteOrderNative:
		return protocol.NativeCodec, nil
	case ByteOrderLittle:
		return protocol.LittleEndianCodec, nil
	case ByteOrderBig:
		return protocol.BigEndianCodec, nil
	default:
		return protocol.Codec{}, fmt.Errorf("%w: unknown byte_order %q", ErrInvalidConfig, c.ByteOrder)
	}
}
