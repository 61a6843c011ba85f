package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server should bind to localhost by default, got %s", cfg.Server.Host)
	}
	if cfg.DetectTimeout() != 5*time.Second || cfg.DetectInterval() != 250*time.Millisecond {
		t.Errorf("detection defaults = %v / %v", cfg.DetectTimeout(), cfg.DetectInterval())
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_VAULT_DIR", "/srv/vault")
		if got := ResolveEnvVars("${TEST_VAULT_DIR}/data"); got != "/srv/vault/data" {
			t.Errorf("expected /srv/vault/data, got %s", got)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		if got := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}"); got != "" {
			t.Errorf("expected empty string, got %s", got)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		if got := ResolveEnvVars("literal-value"); got != "literal-value" {
			t.Errorf("expected literal-value, got %s", got)
		}
	})
}

func TestConfig_StoragePath(t *testing.T) {
	home := "/home/u/.promptvault"
	tests := []struct {
		name    string
		storage StorageConfig
		want    string
	}{
		{"file default", StorageConfig{Backend: "file"}, filepath.Join(home, "data")},
		{"sqlite default", StorageConfig{Backend: "sqlite"}, filepath.Join(home, "promptvault.db")},
		{"memory", StorageConfig{Backend: "memory"}, ""},
		{"explicit", StorageConfig{Backend: "file", Path: "/tmp/blobs"}, "/tmp/blobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: tt.storage}
			if got := cfg.StoragePath(home); got != tt.want {
				t.Errorf("StoragePath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errKey string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"bad timeout", func(c *Config) { c.Desktop.DetectTimeout = "soon" }, "desktop.detect_timeout"},
		{"bad interval", func(c *Config) { c.Desktop.DetectInterval = "5x" }, "desktop.detect_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errKey) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.errKey)
			}
		})
	}
}

func TestConfig_DesktopOpacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Desktop.Opacity = 0.1
	if got := cfg.DesktopOpacity(); got != 0.4 {
		t.Errorf("DesktopOpacity() = %v, want 0.4", got)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
storage:
  backend: sqlite
server:
  port: "9191"
desktop:
  opacity: 0.7
log:
  level: debug
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Storage.Backend != "sqlite" || cfg.Server.Port != "9191" || cfg.Desktop.Opacity != 0.7 {
			t.Errorf("config not loaded: %+v", cfg)
		}
		// Unset keys keep their defaults.
		if cfg.Server.Host != "127.0.0.1" || !cfg.Desktop.Enabled {
			t.Errorf("defaults lost: %+v", cfg)
		}
		if cfg.LogLevel() != slog.LevelDebug {
			t.Errorf("LogLevel() = %v", cfg.LogLevel())
		}
		if mgr.File() != configFile {
			t.Errorf("File() = %s", mgr.File())
		}
	})

	t.Run("defaults without a file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if diff := cmp.Diff(DefaultConfig(), mgr.Get()); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PROMPTVAULT_SERVER_PORT", "7070")
		t.Setenv("PROMPTVAULT_DESKTOP_ALWAYS_ON_TOP", "true")
		mgr, err := NewManager(writeConfig(t, "server:\n  port: \"9191\"\n"))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Server.Port != "7070" || !cfg.Desktop.AlwaysOnTop {
			t.Errorf("env not applied: %+v", cfg)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		if _, err := NewManager(writeConfig(t, "storage:\n  backend: redis\n")); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = mgr.Get().Server.Port
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_Reload_KeepsPreviousOnError(t *testing.T) {
	configFile := writeConfig(t, "log:\n  level: info\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	var calls atomic.Int32
	mgr.OnChange(func(*Config) { calls.Add(1) })

	if err := os.WriteFile(configFile, []byte("log:\n  level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	mgr.reload(configFile)

	if mgr.Get().Log.Level != "info" || calls.Load() != 0 {
		t.Errorf("invalid reload applied: level %s, callbacks %d", mgr.Get().Log.Level, calls.Load())
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "log:\n  level: info\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value
	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Log.Level)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Log.Level; got != "debug" {
		t.Errorf("config not updated: expected debug, got %s", got)
	}
	if v := lastValue.Load(); v != "debug" {
		t.Errorf("callback received wrong value: expected debug, got %v", v)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), mgr.Get()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# promptvault configuration") {
		t.Error("missing header comment")
	}
}
