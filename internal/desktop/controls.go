package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Default detection bounds.
const (
	DefaultDetectTimeout  = 5 * time.Second
	DefaultDetectInterval = 250 * time.Millisecond
)

// Locator reports the shell's bridge once it is available.
type Locator func() (Bridge, bool)

// Config configures Controls.
type Config struct {
	// Locate finds the bridge. Required.
	Locate Locator

	// DetectTimeout bounds how long Attach polls. Defaults to DefaultDetectTimeout.
	DetectTimeout time.Duration

	// DetectInterval is the delay between polls. Defaults to DefaultDetectInterval.
	DetectInterval time.Duration

	Logger *slog.Logger
}

// State is the cached display state of Controls. AlwaysOnTop and Opacity are
// nil until the bridge reports them.
type State struct {
	Attached       bool     `json:"attached" yaml:"attached"`
	AlwaysOnTop    *bool    `json:"alwaysOnTop" yaml:"alwaysOnTop"`
	Opacity        *float64 `json:"opacity" yaml:"opacity"`
	OpacityPercent int      `json:"opacityPercent" yaml:"opacityPercent"`
}

// Controls is the client side of the desktop bridge. Every operation fails
// with ErrBridgeUnavailable until Attach succeeds. Failed calls are returned
// to the caller once and never retried.
type Controls struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.RWMutex
	bridge      Bridge
	alwaysOnTop *bool
	opacity     *float64
	unsubscribe []func()
}

// NewControls creates detached controls.
func NewControls(cfg Config) *Controls {
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = DefaultDetectTimeout
	}
	if cfg.DetectInterval <= 0 {
		cfg.DetectInterval = DefaultDetectInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controls{cfg: cfg, logger: logger}
}

// Attach polls the locator every DetectInterval until it reports a bridge or
// DetectTimeout passes. On success it loads the current pin and opacity and
// subscribes to changes.
func (c *Controls) Attach(ctx context.Context) error {
	if c.cfg.Locate == nil {
		return ErrBridgeUnavailable
	}

	attempts := uint(c.cfg.DetectTimeout/c.cfg.DetectInterval) + 1
	var found Bridge
	err := retry.Do(
		func() error {
			b, ok := c.cfg.Locate()
			if !ok || b == nil {
				return ErrBridgeUnavailable
			}
			found = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.cfg.DetectInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.Warn("desktop bridge not detected", "timeout", c.cfg.DetectTimeout, "error", err)
		if errors.Is(err, ErrBridgeUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
	}

	c.mu.Lock()
	c.bridge = found
	c.unsubscribe = append(c.unsubscribe,
		found.OnAlwaysOnTopChanged(func(v bool) { c.setAlwaysOnTop(v) }),
		found.OnOpacityChanged(func(v float64) { c.setOpacity(v) }),
	)
	c.mu.Unlock()

	if v, err := found.GetAlwaysOnTop(ctx); err != nil {
		c.logger.Warn("failed to read pin state", "error", err)
	} else {
		c.setAlwaysOnTop(v)
	}
	if v, err := found.GetOpacity(ctx); err != nil {
		c.logger.Warn("failed to read opacity", "error", err)
	} else {
		c.setOpacity(v)
	}

	c.logger.Info("desktop bridge attached")
	return nil
}

// Detach drops the bridge and its subscriptions.
func (c *Controls) Detach() {
	c.mu.Lock()
	unsubs := c.unsubscribe
	c.unsubscribe = nil
	c.bridge = nil
	c.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
}

// Attached reports whether a bridge has been located.
func (c *Controls) Attached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bridge != nil
}

// TogglePin flips always-on-top and caches the reported value.
func (c *Controls) TogglePin(ctx context.Context) (bool, error) {
	b, err := c.current()
	if err != nil {
		return false, err
	}
	v, err := b.ToggleAlwaysOnTop(ctx)
	if err != nil {
		c.logger.Warn("failed to toggle desktop pin state", "error", err)
		return false, fmt.Errorf("failed to toggle pin: %w", err)
	}
	c.setAlwaysOnTop(v)
	return v, nil
}

// SetOpacityPercent converts a percentage to an opacity, clamps it and
// forwards it. It returns the opacity the shell applied.
func (c *Controls) SetOpacityPercent(ctx context.Context, percent float64) (float64, error) {
	b, err := c.current()
	if err != nil {
		return 0, err
	}
	v, err := b.SetOpacity(ctx, ClampOpacity(percent/100))
	if err != nil {
		c.logger.Warn("failed to update desktop opacity", "error", err)
		return 0, fmt.Errorf("failed to set opacity: %w", err)
	}
	c.setOpacity(v)
	return v, nil
}

// Minimize asks the shell to minimize the window.
func (c *Controls) Minimize(ctx context.Context) error {
	b, err := c.current()
	if err != nil {
		return err
	}
	if err := b.MinimizeWindow(ctx); err != nil {
		c.logger.Warn("failed to minimize window", "error", err)
		return fmt.Errorf("failed to minimize: %w", err)
	}
	return nil
}

// Close asks the shell to close the window.
func (c *Controls) Close(ctx context.Context) error {
	b, err := c.current()
	if err != nil {
		return err
	}
	if err := b.CloseWindow(ctx); err != nil {
		c.logger.Warn("failed to close window", "error", err)
		return fmt.Errorf("failed to close: %w", err)
	}
	return nil
}

// State returns the cached display state.
func (c *Controls) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := State{Attached: c.bridge != nil, OpacityPercent: opacityPercent(c.opacity)}
	if c.alwaysOnTop != nil {
		v := *c.alwaysOnTop
		s.AlwaysOnTop = &v
	}
	if c.opacity != nil {
		v := *c.opacity
		s.Opacity = &v
	}
	return s
}

// OpacityPercent reports the cached opacity as a whole percentage, or 100
// when it is unknown.
func (c *Controls) OpacityPercent() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return opacityPercent(c.opacity)
}

func opacityPercent(opacity *float64) int {
	if opacity == nil {
		return 100
	}
	return int(math.Round(*opacity * 100))
}

func (c *Controls) current() (Bridge, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bridge == nil {
		return nil, ErrBridgeUnavailable
	}
	return c.bridge, nil
}

func (c *Controls) setAlwaysOnTop(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alwaysOnTop = &v
}

func (c *Controls) setOpacity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacity = &v
}
