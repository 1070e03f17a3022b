package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an analysis does not exist.
var ErrNotFound = errors.New("analysis not found")

// AnalysisReader provides read-only access to saved analyses
type AnalysisReader interface {
	// Get retrieves an analysis by ID, returns ErrNotFound if missing
	Get(ctx context.Context, id string) (*StoredAnalysis, error)
	// List returns the most recent analyses, newest first
	List(ctx context.Context, limit int) ([]StoredAnalysis, error)
	// Latest returns the newest analysis, or ErrNotFound when nothing was saved
	Latest(ctx context.Context) (*StoredAnalysis, error)
	// Count returns the total number of analyses stored
	Count(ctx context.Context) (int, error)
}

// AnalysisWriter provides write access to saved analyses
type AnalysisWriter interface {
	AnalysisReader

	// Save stores an analysis (replaces an existing one with the same ID)
	Save(ctx context.Context, a *StoredAnalysis) error
	// Delete removes an analysis, returns ErrNotFound if missing
	Delete(ctx context.Context, id string) error
}
