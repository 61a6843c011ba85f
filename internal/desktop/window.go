package desktop

import (
	"context"
	"log/slog"
	"sync"
)

// WindowConfig sets a Window's initial state.
type WindowConfig struct {
	AlwaysOnTop bool
	Opacity     float64 // clamped; zero means fully opaque
	Logger      *slog.Logger
}

// WindowState is a snapshot of a Window.
type WindowState struct {
	AlwaysOnTop bool    `json:"alwaysOnTop" yaml:"alwaysOnTop"`
	Opacity     float64 `json:"opacity" yaml:"opacity"`
	Minimized   bool    `json:"minimized" yaml:"minimized"`
	Closed      bool    `json:"closed" yaml:"closed"`
}

// Window is an in-process shell window implementing Bridge.
// Changes are broadcast to subscribers synchronously, outside the lock.
type Window struct {
	logger *slog.Logger

	mu          sync.Mutex
	state       WindowState
	nextSub     int
	pinSubs     map[int]func(bool)
	opacitySubs map[int]func(float64)
}

var _ Bridge = (*Window)(nil)

// NewWindow creates a window with the configured pin and opacity.
func NewWindow(cfg WindowConfig) *Window {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opacity := cfg.Opacity
	if opacity == 0 {
		opacity = MaxOpacity
	}
	return &Window{
		logger:      logger,
		state:       WindowState{AlwaysOnTop: cfg.AlwaysOnTop, Opacity: ClampOpacity(opacity)},
		pinSubs:     make(map[int]func(bool)),
		opacitySubs: make(map[int]func(float64)),
	}
}

// State returns a snapshot of the window.
func (w *Window) State() WindowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Window) ToggleAlwaysOnTop(ctx context.Context) (bool, error) {
	w.mu.Lock()
	if w.state.Closed {
		w.mu.Unlock()
		return false, ErrWindowClosed
	}
	w.state.AlwaysOnTop = !w.state.AlwaysOnTop
	value := w.state.AlwaysOnTop
	subs := collect(w.pinSubs)
	w.mu.Unlock()

	w.logger.Debug("window pin changed", "always_on_top", value)
	for _, fn := range subs {
		fn(value)
	}
	return value, nil
}

func (w *Window) GetAlwaysOnTop(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Closed {
		return false, ErrWindowClosed
	}
	return w.state.AlwaysOnTop, nil
}

func (w *Window) OnAlwaysOnTopChanged(fn func(bool)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextSub
	w.nextSub++
	w.pinSubs[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.pinSubs, id)
	}
}

func (w *Window) SetOpacity(ctx context.Context, value float64) (float64, error) {
	w.mu.Lock()
	if w.state.Closed {
		w.mu.Unlock()
		return 0, ErrWindowClosed
	}
	applied := ClampOpacity(value)
	w.state.Opacity = applied
	subs := collect(w.opacitySubs)
	w.mu.Unlock()

	w.logger.Debug("window opacity changed", "opacity", applied)
	for _, fn := range subs {
		fn(applied)
	}
	return applied, nil
}

func (w *Window) GetOpacity(ctx context.Context) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Closed {
		return 0, ErrWindowClosed
	}
	return w.state.Opacity, nil
}

func (w *Window) OnOpacityChanged(fn func(float64)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextSub
	w.nextSub++
	w.opacitySubs[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.opacitySubs, id)
	}
}

func (w *Window) MinimizeWindow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Closed {
		return ErrWindowClosed
	}
	w.state.Minimized = true
	return nil
}

// CloseWindow closes the window. Later calls other than State fail with
// ErrWindowClosed. Closing twice is not an error.
func (w *Window) CloseWindow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Closed = true
	return nil
}

func collect[T any](subs map[int]func(T)) []func(T) {
	out := make([]func(T), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}
