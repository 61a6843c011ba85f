// Package desktop provides the window-chrome bridge between the prompt
// library and a desktop shell: pin on top, opacity, minimize and close.
//
// Window is the shell side that owns the window state. Controls is the
// client side; it locates a Bridge after startup and caches the last known
// state for display.
package desktop

import (
	"context"
	"errors"
	"math"
)

// Opacity bounds accepted by the shell.
const (
	MinOpacity = 0.4
	MaxOpacity = 1.0
)

// ErrBridgeUnavailable is returned by Controls until a bridge has been located.
var ErrBridgeUnavailable = errors.New("desktop controls are still starting up, try again in a moment")

// ErrWindowClosed is returned by a Window after CloseWindow.
var ErrWindowClosed = errors.New("window is closed")

// Bridge is the set of window operations a desktop shell exposes.
type Bridge interface {
	// ToggleAlwaysOnTop flips the pin state and returns the new value.
	ToggleAlwaysOnTop(ctx context.Context) (bool, error)
	GetAlwaysOnTop(ctx context.Context) (bool, error)
	// OnAlwaysOnTopChanged registers fn for pin changes and returns a
	// function that removes it.
	OnAlwaysOnTopChanged(fn func(bool)) (unsubscribe func())

	// SetOpacity clamps value into [MinOpacity, MaxOpacity], applies it and
	// returns the applied value.
	SetOpacity(ctx context.Context, value float64) (float64, error)
	GetOpacity(ctx context.Context) (float64, error)
	OnOpacityChanged(fn func(float64)) (unsubscribe func())

	MinimizeWindow(ctx context.Context) error
	CloseWindow(ctx context.Context) error
}

// ClampOpacity limits v to [MinOpacity, MaxOpacity]. NaN and infinities
// become fully opaque.
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MaxOpacity
	}
	return math.Min(MaxOpacity, math.Max(MinOpacity, v))
}
