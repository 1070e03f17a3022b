// Package trends serves the static beauty trend catalog.
package trends

import (
	"context"
	"slices"
	"time"

	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/filters"
)

// Categories lists the catalog categories in display order.
var Categories = []string{"AI", "Eco", "Style"}

// Trend is an editorial record about a beauty industry development.
type Trend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Tag         string `json:"tag"`
	Icon        string `json:"icon"`
}

// Group is the trends of one category.
type Group struct {
	Category string  `json:"category"`
	Trends   []Trend `json:"trends"`
}

// Catalog holds the immutable trend list.
type Catalog struct {
	items []Trend
	delay time.Duration
}

// NewCatalog builds a catalog from configuration items. A zero delay serves immediately.
func NewCatalog(items []config.TrendItem, delay time.Duration) *Catalog {
	trends := make([]Trend, 0, len(items))
	for _, it := range items {
		trends = append(trends, Trend{
			Title:       it.Title,
			Description: it.Description,
			Category:    it.Category,
			Tag:         it.Tag,
			Icon:        it.Icon,
		})
	}
	return &Catalog{items: trends, delay: delay}
}

// All returns a copy of every trend without delay.
func (c *Catalog) All() []Trend {
	return slices.Clone(c.items)
}

// Fetch returns the catalog after the configured artificial delay.
func (c *Catalog) Fetch(ctx context.Context) ([]Trend, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return c.All(), nil
}

// Categorize groups trends by the known categories, keeping empty categories.
// Trends with other categories are left out, matching the card layout.
func Categorize(trends []Trend) []Group {
	groups := make([]Group, 0, len(Categories))
	for _, category := range Categories {
		g := Group{Category: category, Trends: []Trend{}}
		for _, t := range trends {
			if filters.Fold(t.Category) == filters.Fold(category) {
				g.Trends = append(g.Trends, t)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Expanded returns the trends revealed by "View All Trends": everything after the preview.
func Expanded(trends []Trend) []Trend {
	if len(trends) <= constants.TrendsPreviewCount {
		return []Trend{}
	}
	return slices.Clone(trends[constants.TrendsPreviewCount:])
}
