package config

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/desktop"
)

// Config holds promptvault configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Desktop DesktopConfig `mapstructure:"desktop" yaml:"desktop"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// StorageConfig selects the blob backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // "file", "sqlite", "memory"
	Path    string `mapstructure:"path" yaml:"path"`       // Supports ${ENV_VAR}; empty means under home
}

// ServerConfig is the local HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DesktopConfig configures the window bridge.
type DesktopConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	AlwaysOnTop    bool    `mapstructure:"always_on_top" yaml:"always_on_top"`
	Opacity        float64 `mapstructure:"opacity" yaml:"opacity"`                 // Clamped to [0.4, 1.0]
	DetectTimeout  string  `mapstructure:"detect_timeout" yaml:"detect_timeout"`   // Go duration
	DetectInterval string  `mapstructure:"detect_interval" yaml:"detect_interval"` // Go duration
}

// LogConfig sets the slog level.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: blob.BackendFile,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Desktop: DesktopConfig{
			Enabled:        true,
			AlwaysOnTop:    false,
			Opacity:        desktop.MaxOpacity,
			DetectTimeout:  desktop.DefaultDetectTimeout.String(),
			DetectInterval: desktop.DefaultDetectInterval.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case blob.BackendFile, blob.BackendSQLite, blob.BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if _, err := parseDuration("desktop.detect_timeout", c.Desktop.DetectTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("desktop.detect_interval", c.Desktop.DetectInterval); err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// StoragePath resolves the blob location. An empty path means a data
// directory (file) or database file (sqlite) under homeDir.
func (c *Config) StoragePath(homeDir string) string {
	if p := ResolveEnvVars(c.Storage.Path); p != "" {
		return p
	}
	switch c.Storage.Backend {
	case blob.BackendSQLite:
		return filepath.Join(homeDir, "promptvault.db")
	case blob.BackendMemory:
		return ""
	default:
		return filepath.Join(homeDir, "data")
	}
}

// ServerAddr returns host:port for the HTTP listener.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DesktopOpacity returns the configured opacity clamped to the shell's range.
func (c *Config) DesktopOpacity() float64 {
	return desktop.ClampOpacity(c.Desktop.Opacity)
}

// DetectTimeout returns the bridge detection bound, or the default when unset or invalid.
func (c *Config) DetectTimeout() time.Duration {
	d, err := parseDuration("desktop.detect_timeout", c.Desktop.DetectTimeout)
	if err != nil || d <= 0 {
		return desktop.DefaultDetectTimeout
	}
	return d
}

// DetectInterval returns the bridge polling interval, or the default when unset or invalid.
func (c *Config) DetectInterval() time.Duration {
	d, err := parseDuration("desktop.detect_interval", c.Desktop.DetectInterval)
	if err != nil || d <= 0 {
		return desktop.DefaultDetectInterval
	}
	return d
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
