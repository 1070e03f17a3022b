package database

import (
	"context"
	"errors"
	"sync"
)

// ErrNotInitialized is returned when no storage backend was registered.
var ErrNotInitialized = errors.New("storage backend not initialized: DATABASE_URL or MARIADB_DSN is required")

var (
	backendMu     sync.RWMutex
	backendName   string
	backendWriter func() AnalysisWriter
)

// RegisterBackend registers the analysis repository constructor of a backend.
// This is called by the postgres and mariadb packages to avoid import cycles.
func RegisterBackend(name string, writer func() AnalysisWriter) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = name
	backendWriter = writer
}

// ResetBackend removes the registered backend.
func ResetBackend() {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = ""
	backendWriter = nil
}

// IsInitialized returns whether a backend has been registered.
func IsInitialized() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendWriter != nil
}

// BackendName returns the name of the registered backend, empty when none.
func BackendName() string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendName
}

// GetAnalysisWriter returns an AnalysisWriter from the registered backend
func GetAnalysisWriter(ctx context.Context) (AnalysisWriter, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backendWriter == nil {
		return nil, ErrNotInitialized
	}
	return backendWriter(), nil
}

// GetAnalysisReader returns an AnalysisReader from the registered backend
func GetAnalysisReader(ctx context.Context) (AnalysisReader, error) {
	return GetAnalysisWriter(ctx)
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the registered backend. Backends without a connection always pass.
func Ping(ctx context.Context) error {
	writer, err := GetAnalysisWriter(ctx)
	if err != nil {
		return err
	}
	if p, ok := writer.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// UseMemoryBackend registers a process-local store. Saved analyses are lost on exit.
func UseMemoryBackend() *MemoryStore {
	store := NewMemoryStore()
	RegisterBackend("memory", func() AnalysisWriter { return store })
	return store
}
