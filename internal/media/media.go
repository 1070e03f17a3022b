// Package media acquires frame streams from camera-like sources.
package media

import (
	"context"
	"errors"

	"github.com/kozaktomas/frushion/internal/frame"
)

var (
	// ErrPermissionDenied is returned when the source refuses access.
	ErrPermissionDenied = errors.New("camera access denied")
	// ErrNoFrame is returned when the stream has not produced a frame yet.
	ErrNoFrame = errors.New("no frame available")
	// ErrClosed is returned when reading from a closed stream.
	ErrClosed = errors.New("stream closed")
)

// Source opens frame streams.
type Source interface {
	Name() string
	Open(ctx context.Context) (Stream, error)
}

// Stream is an owned handle on an open source. Close is idempotent.
type Stream interface {
	ReadFrame(ctx context.Context) (*frame.Frame, error)
	Close() error
}
