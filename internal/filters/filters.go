// Package filters keeps the cosmetic filter selection and pushes it to the analysis service.
package filters

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

// Available lists the known filters in display order.
var Available = []string{"Lips", "Eye", "Brows", "Proportion", "Skin", "Face", "Eyeshadow"}

// ErrUnknownFilter is returned when toggling a filter that does not exist.
var ErrUnknownFilter = errors.New("unknown filter")

// Applier receives the full selection after every change.
type Applier interface {
	ApplyFilters(ctx context.Context, filters []string) error
}

// Lookup resolves a user supplied name ("eye shadow", "LIPS") to a known filter.
func Lookup(name string) (string, bool) {
	folded := Fold(name)
	for _, f := range Available {
		if Fold(f) == folded {
			return f, true
		}
	}
	return "", false
}

// Selection is the ordered set of active filters.
type Selection struct {
	mu       sync.Mutex
	selected []string
	applier  Applier
}

// NewSelection creates an empty selection. A nil applier only tracks state.
func NewSelection(applier Applier) *Selection {
	return &Selection{applier: applier}
}

// Selected returns a copy of the active filters in selection order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// IsSelected reports whether the filter is active.
func (s *Selection) IsSelected(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.selected, name)
}

// Toggle selects or deselects a filter and posts the updated list.
// The selection changes even when the applier fails; the failure is only logged.
func (s *Selection) Toggle(ctx context.Context, name string) ([]string, error) {
	filter, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}

	s.mu.Lock()
	if idx := slices.Index(s.selected, filter); idx >= 0 {
		s.selected = slices.Delete(s.selected, idx, idx+1)
	} else {
		s.selected = append(s.selected, filter)
	}
	updated := slices.Clone(s.selected)
	s.mu.Unlock()

	if updated == nil {
		updated = []string{}
	}

	if s.applier != nil {
		if err := s.applier.ApplyFilters(ctx, updated); err != nil {
			log.Printf("Failed to send filters: %v", err)
		}
	}
	return updated, nil
}
