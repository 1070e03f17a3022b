// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/kozaktomas/frushion/internal/database"
)

// MockAnalysisStore is a mock implementation of database.AnalysisWriter
type MockAnalysisStore struct {
	*database.MemoryStore

	// Error injection
	GetError    error
	ListError   error
	LatestError error
	CountError  error
	SaveError   error
	DeleteError error
	PingError   error

	mu    sync.Mutex
	saved []database.StoredAnalysis
}

// NewMockAnalysisStore creates a new mock analysis store
func NewMockAnalysisStore() *MockAnalysisStore {
	return &MockAnalysisStore{MemoryStore: database.NewMemoryStore()}
}

// Ping returns PingError
func (m *MockAnalysisStore) Ping(ctx context.Context) error {
	return m.PingError
}

// AddAnalysis adds an analysis to the mock store without recording it as saved
func (m *MockAnalysisStore) AddAnalysis(a database.StoredAnalysis) {
	_ = m.MemoryStore.Save(context.Background(), &a)
}

// Get retrieves an analysis by ID
func (m *MockAnalysisStore) Get(ctx context.Context, id string) (*database.StoredAnalysis, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.MemoryStore.Get(ctx, id)
}

// List returns analyses newest first
func (m *MockAnalysisStore) List(ctx context.Context, limit int) ([]database.StoredAnalysis, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.MemoryStore.List(ctx, limit)
}

// Latest returns the newest analysis
func (m *MockAnalysisStore) Latest(ctx context.Context) (*database.StoredAnalysis, error) {
	if m.LatestError != nil {
		return nil, m.LatestError
	}
	return m.MemoryStore.Latest(ctx)
}

// Count returns the number of analyses
func (m *MockAnalysisStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.MemoryStore.Count(ctx)
}

// Save stores an analysis
func (m *MockAnalysisStore) Save(ctx context.Context, a *database.StoredAnalysis) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	m.saved = append(m.saved, *a)
	m.mu.Unlock()
	return m.MemoryStore.Save(ctx, a)
}

// Delete removes an analysis
func (m *MockAnalysisStore) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	return m.MemoryStore.Delete(ctx, id)
}

// Saved returns every analysis passed to Save, in call order
func (m *MockAnalysisStore) Saved() []database.StoredAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.saved)
}

var _ database.AnalysisWriter = (*MockAnalysisStore)(nil)
