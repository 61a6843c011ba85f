package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/config"
	"github.com/jackzampolin/promptvault/internal/desktop"
	"github.com/jackzampolin/promptvault/internal/home"
	"github.com/jackzampolin/promptvault/internal/server/endpoints"
	"github.com/jackzampolin/promptvault/internal/svcctx"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// Server is the main promptvault HTTP server.
// It owns the prompt store and, when enabled, the desktop window bridge.
type Server struct {
	httpServer *http.Server
	cfg        Config
	logger     *slog.Logger

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	services *svcctx.Services
	storage  blob.Storage
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: from config, else 127.0.0.1)
	Host string
	// Port is the port to listen on (default: from config, else 8080)
	Port string
	// Home is the promptvault home directory. Required unless Storage is set
	// or the storage backend is memory.
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support.
	// When nil, config.DefaultConfig is used.
	ConfigManager *config.Manager
	// Storage overrides the configured blob backend.
	Storage blob.Storage
	// Logger is the structured logger to use
	Logger *slog.Logger
	// LogLevel, when set, follows log.level on config reload.
	LogLevel *slog.LevelVar
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	conf := currentConfig(cfg.ConfigManager)
	if cfg.Host == "" {
		cfg.Host = conf.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = conf.Server.Port
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Storage == nil && cfg.Home == nil && conf.Storage.Backend != blob.BackendMemory && conf.Storage.Path == "" {
		return nil, errors.New("server requires a home directory or a storage path")
	}

	s := &Server{
		cfg:              cfg,
		logger:           cfg.Logger,
		endpointRegistry: endpoints.NewRegistry(),
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func currentConfig(m *config.Manager) *config.Config {
	if m == nil {
		return config.DefaultConfig()
	}
	return m.Get()
}

// Start loads the prompt store, starts the desktop bridge and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.initialize(ctx); err != nil {
		s.closeStorage()
		s.setNotRunning()
		return err
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// initialize opens storage and the vault, then wires the desktop bridge and
// config reload.
func (s *Server) initialize(ctx context.Context) error {
	conf := currentConfig(s.cfg.ConfigManager)

	storage := s.cfg.Storage
	if storage == nil {
		homePath := ""
		if s.cfg.Home != nil {
			homePath = s.cfg.Home.Path()
		}
		path := conf.StoragePath(homePath)
		var err error
		storage, err = blob.Open(conf.Storage.Backend, path)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", conf.Storage.Backend, err)
		}
		s.logger.Info("storage opened", "backend", conf.Storage.Backend, "path", path)
	}
	s.mu.Lock()
	s.storage = storage
	s.mu.Unlock()

	store, err := vault.Open(ctx, vault.Config{Storage: storage, Logger: s.logger})
	if err != nil {
		return fmt.Errorf("failed to open prompt store: %w", err)
	}

	services := &svcctx.Services{
		Vault:         store,
		ConfigManager: s.cfg.ConfigManager,
		Logger:        s.logger,
		Home:          s.cfg.Home,
	}

	if conf.Desktop.Enabled {
		services.Window = desktop.NewWindow(desktop.WindowConfig{
			AlwaysOnTop: conf.Desktop.AlwaysOnTop,
			Opacity:     conf.DesktopOpacity(),
			Logger:      s.logger,
		})
		services.Desktop = desktop.NewControls(desktop.Config{
			Locate:         windowLocator(services.Window),
			DetectTimeout:  conf.DetectTimeout(),
			DetectInterval: conf.DetectInterval(),
			Logger:         s.logger,
		})
		go func() {
			if err := services.Desktop.Attach(ctx); err != nil {
				s.logger.Warn("desktop bridge not attached", "error", err)
			}
		}()
	}

	if s.cfg.ConfigManager != nil {
		s.cfg.ConfigManager.OnChange(func(c *config.Config) {
			s.applyConfig(c, services)
		})
	}

	s.mu.Lock()
	s.services = services
	s.mu.Unlock()
	return nil
}

func windowLocator(w *desktop.Window) desktop.Locator {
	return func() (desktop.Bridge, bool) {
		if w == nil || w.State().Closed {
			return nil, false
		}
		return w, true
	}
}

// applyConfig applies the settings that can change without a restart.
func (s *Server) applyConfig(c *config.Config, services *svcctx.Services) {
	if s.cfg.LogLevel != nil {
		s.cfg.LogLevel.Set(c.LogLevel())
	}
	if services.Window != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := services.Window.SetOpacity(ctx, c.DesktopOpacity()); err != nil {
			s.logger.Warn("failed to apply configured opacity", "error", err)
		}
	}
	s.logger.Info("runtime settings reloaded from config")
}

// shutdown performs graceful shutdown of the HTTP server and the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.mu.RLock()
	services := s.services
	s.mu.RUnlock()
	if services != nil && services.Desktop != nil {
		services.Desktop.Detach()
	}
	s.closeStorage()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) closeStorage() {
	s.mu.Lock()
	services, storage := s.services, s.storage
	s.services, s.storage = nil, nil
	s.mu.Unlock()

	if services != nil && services.Vault != nil {
		if err := services.Vault.Close(); err != nil {
			s.logger.Error("prompt store close error", "error", err)
		}
		return
	}
	if storage != nil {
		if err := storage.Close(); err != nil {
			s.logger.Error("storage close error", "error", err)
		}
	}
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Vault returns the prompt store.
// Returns nil if the server hasn't started yet.
func (s *Server) Vault() *vault.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.services == nil {
		return nil
	}
	return s.services.Vault
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		services := s.services
		s.mu.RUnlock()

		ctx := r.Context()
		if services != nil {
			ctx = svcctx.WithServices(ctx, services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the prompt store isn't loaded.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Vault() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
