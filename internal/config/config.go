// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the config filename looked up in the working directory.
const DefaultFile = "spectate.toml"

// Config represents the viewer configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Playback  PlaybackConfig  `toml:"playback"`
	Reconnect ReconnectConfig `toml:"reconnect"`
	UI        UIConfig        `toml:"ui"`
	Tap       TapConfig       `toml:"tap"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Roles     RolesConfig     `toml:"roles"`
}

// ServerConfig locates the game server. A full URL wins over host/port; the
// AVALON_HOST and AVALON_PORT environment variables win over both.
type ServerConfig struct {
	URL  string `toml:"url"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlaybackConfig tunes auto-play pacing.
type PlaybackConfig struct {
	BaseIntervalMs   int       `toml:"base_interval_ms"`  // dwell per step at speed 1x
	SpeechMultiplier float64   `toml:"speech_multiplier"` // extra dwell on speech steps
	Speeds           []float64 `toml:"speeds"`            // selectable speed ladder
	AutoPlay         bool      `toml:"auto_play"`         // start playing on load
}

// ReconnectConfig tunes the live client's backoff.
type ReconnectConfig struct {
	BaseDelayMs int     `toml:"base_delay_ms"`
	MaxDelayMs  int     `toml:"max_delay_ms"`
	Factor      float64 `toml:"factor"`
}

// UIConfig contains renderer settings.
type UIConfig struct {
	GodMode     bool `toml:"god_mode"`      // reveal roles and hidden knowledge
	SpeechTTLMs int  `toml:"speech_ttl_ms"` // how long live speech bubbles linger
	WrapWidth   int  `toml:"wrap_width"`    // text dump wrap column
}

// TapConfig configures the NATS event tap, which republishes every inbound
// event for other tools to consume.
type TapConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled  bool              `toml:"enabled"`
	Endpoint string            `toml:"endpoint"` // OTLP endpoint (e.g., localhost:4318)
	Insecure bool              `toml:"insecure"` // Disable TLS (default false)
	Headers  map[string]string `toml:"headers"`  // Auth headers
}

// RolesConfig points at an optional role catalog override.
type RolesConfig struct {
	Catalog string `toml:"catalog"` // YAML file merged over the built-in roles
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Playback: PlaybackConfig{
			BaseIntervalMs:   1500,
			SpeechMultiplier: 2.5,
			Speeds:           []float64{0.5, 1, 2, 4},
		},
		Reconnect: ReconnectConfig{
			BaseDelayMs: 1000,
			MaxDelayMs:  30000,
			Factor:      1.5,
		},
		UI: UIConfig{
			SpeechTTLMs: 6000,
			WrapWidth:   72,
		},
		Tap: TapConfig{
			Subject: "avalon.events",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads the given path, or spectate.toml from the working directory
// when path is empty. A missing default file falls back to defaults; a
// missing explicit path is an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	cfg, err := LoadFile(DefaultFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Playback.BaseIntervalMs <= 0 {
		return fmt.Errorf("playback.base_interval_ms must be positive, got %d", c.Playback.BaseIntervalMs)
	}
	if c.Playback.SpeechMultiplier < 1 {
		return fmt.Errorf("playback.speech_multiplier must be >= 1, got %g", c.Playback.SpeechMultiplier)
	}
	if len(c.Playback.Speeds) == 0 {
		return fmt.Errorf("playback.speeds must not be empty")
	}
	for _, s := range c.Playback.Speeds {
		if s <= 0 {
			return fmt.Errorf("playback.speeds entries must be positive, got %g", s)
		}
	}
	if c.Reconnect.BaseDelayMs <= 0 {
		return fmt.Errorf("reconnect.base_delay_ms must be positive, got %d", c.Reconnect.BaseDelayMs)
	}
	if c.Reconnect.MaxDelayMs < c.Reconnect.BaseDelayMs {
		return fmt.Errorf("reconnect.max_delay_ms must be >= base_delay_ms")
	}
	if c.Reconnect.Factor < 1 {
		return fmt.Errorf("reconnect.factor must be >= 1, got %g", c.Reconnect.Factor)
	}
	if c.Tap.Enabled && c.Tap.URL == "" {
		return fmt.Errorf("tap.url is required when the tap is enabled")
	}
	return nil
}

// ServerURL resolves the websocket endpoint. Precedence: explicit URL, then
// AVALON_HOST/AVALON_PORT, then the host/port fields. Bare host:port forms
// gain the ws scheme and /ws path.
func (c *Config) ServerURL() string {
	if c.Server.URL != "" {
		return normalizeWSURL(c.Server.URL)
	}

	host := os.Getenv("AVALON_HOST")
	if host == "" {
		host = c.Server.Host
	}
	if host == "" {
		host = "localhost"
	}

	port := c.Server.Port
	if env := os.Getenv("AVALON_PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil && p > 0 {
			port = p
		}
	}
	if port == 0 {
		port = 8080
	}

	return fmt.Sprintf("ws://%s:%d/ws", host, port)
}

// normalizeWSURL fills in the pieces a hand-typed endpoint tends to omit.
func normalizeWSURL(raw string) string {
	url := raw
	if !strings.Contains(url, "://") {
		url = "ws://" + url
	}
	url = strings.Replace(url, "http://", "ws://", 1)
	url = strings.Replace(url, "https://", "wss://", 1)

	rest := url
	if i := strings.Index(url, "://"); i >= 0 {
		rest = url[i+3:]
	}
	if !strings.Contains(rest, "/") {
		url += "/ws"
	}
	return url
}

// BaseInterval returns the playback dwell at speed 1x.
func (c *Config) BaseInterval() time.Duration {
	return time.Duration(c.Playback.BaseIntervalMs) * time.Millisecond
}

// SpeechTTL returns how long live speech bubbles linger.
func (c *Config) SpeechTTL() time.Duration {
	return time.Duration(c.UI.SpeechTTLMs) * time.Millisecond
}

// ReconnectBase returns the first reconnect delay.
func (c *Config) ReconnectBase() time.Duration {
	return time.Duration(c.Reconnect.BaseDelayMs) * time.Millisecond
}

// ReconnectMax returns the backoff ceiling.
func (c *Config) ReconnectMax() time.Duration {
	return time.Duration(c.Reconnect.MaxDelayMs) * time.Millisecond
}
