// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Capture constants
const (
	// DefaultExpressionInterval is the polling cadence of the live expression widget
	DefaultExpressionInterval = 100 * time.Millisecond

	// DefaultScoreInterval is the polling cadence of the live beauty score widget
	DefaultScoreInterval = 10 * time.Second

	// DefaultFrameRate approximates a display refresh loop for continuous capture
	DefaultFrameRate = 30

	// DefaultCameraWidth and DefaultCameraHeight are the requested capture dimensions
	DefaultCameraWidth  = 640
	DefaultCameraHeight = 480

	// MaxImageSize is the maximum dimension (width or height) sent to analysis backends
	MaxImageSize = 800

	// JPEGQuality is the quality used when encoding frames for transport
	JPEGQuality = 85
)

// Beauty scoring constants
const (
	// GoldenRatio is the reference proportion for landmark ratios
	GoldenRatio = 1.618

	// ScoreWeight scales the summed ratio deviation into the 0-100 range
	ScoreWeight = 50

	// MinLandmarks is the number of points needed to estimate the golden ratio
	MinLandmarks = 5
)

// Trend constants
const (
	// DefaultTrendsDelay simulates the latency of the editorial trends feed
	DefaultTrendsDelay = 1500 * time.Millisecond

	// TrendsPreviewCount is the number of trends shown before "View All Trends"
	TrendsPreviewCount = 2
)
