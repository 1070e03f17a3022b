// Package analysis runs the capture-analyze-render loop: it reads frames from a media stream,
// hands them to an invoker and renders the outcome into display state.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
	"github.com/kozaktomas/frushion/internal/skin"
)

// Analysis modes.
const (
	ModeSkin       = "skin"
	ModeExpression = "expression"
	ModeScore      = "score"
	ModeBrightness = "brightness"
)

// Modes lists every supported mode.
var Modes = []string{ModeSkin, ModeExpression, ModeScore, ModeBrightness}

var (
	// ErrBusy is returned when a round is requested while another one is in flight.
	ErrBusy = errors.New("analysis already in flight")
	// ErrClosed is returned when the session was closed.
	ErrClosed = errors.New("session closed")
	// ErrNotStarted is returned when a round is requested before Start.
	ErrNotStarted = errors.New("session not started")
	// ErrNoLandmarks is returned when no face landmarks are available for scoring.
	ErrNoLandmarks = errors.New("no face landmarks available")
	// ErrNotConfigured is returned when an invoker misses a required backend.
	ErrNotConfigured = errors.New("analysis backend not configured")
)

// Outcome is what one analysis round produced. Only the fields of the invoker's mode are set.
type Outcome struct {
	Skin       *skin.Result       `json:"skin,omitempty"`
	Expression *expression.Result `json:"expression,omitempty"`
	Score      string             `json:"score,omitempty"`
}

// Invoker analyzes a single frame.
type Invoker interface {
	Mode() string
	Invoke(ctx context.Context, f *frame.Frame) (Outcome, error)
}

// ValidMode reports whether mode is a known analysis mode.
func ValidMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ParseMode validates a mode name.
func ParseMode(mode string) (string, error) {
	if !ValidMode(mode) {
		return "", fmt.Errorf("unknown analysis mode %q (want skin, expression, score or brightness)", mode)
	}
	return mode, nil
}
