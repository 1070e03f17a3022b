// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// Health check constants
const (
	// HealthCheckTimeout bounds the storage ping of the health endpoint
	HealthCheckTimeout = 2 * time.Second
)

// File upload constants
const (
	// MaxUploadSize is the maximum frame upload size in bytes (20MB)
	MaxUploadSize = 20 << 20
)

// Listing constants
const (
	// DefaultAnalysesLimit is the default number of saved analyses returned by list endpoints
	DefaultAnalysesLimit = 100
)
