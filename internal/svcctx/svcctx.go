// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/promptvault/internal/config"
	"github.com/jackzampolin/promptvault/internal/desktop"
	"github.com/jackzampolin/promptvault/internal/home"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Vault         *vault.Store
	Desktop       *desktop.Controls
	Window        *desktop.Window
	ConfigManager *config.Manager
	Logger        *slog.Logger
	Home          *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// VaultFrom extracts the prompt store from context.
func VaultFrom(ctx context.Context) *vault.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Vault
	}
	return nil
}

// DesktopFrom extracts the desktop controls from context.
func DesktopFrom(ctx context.Context) *desktop.Controls {
	if s := ServicesFrom(ctx); s != nil {
		return s.Desktop
	}
	return nil
}

// WindowFrom extracts the shell window from context.
func WindowFrom(ctx context.Context) *desktop.Window {
	if s := ServicesFrom(ctx); s != nil {
		return s.Window
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
