package trends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kozaktomas/frushion/internal/config"
)

func testCatalog(delay time.Duration) *Catalog {
	return NewCatalog(config.Load().Trends.Items, delay)
}

func TestFetch_ReturnsCatalog(t *testing.T) {
	got, err := testCatalog(0).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 trends, got %d", len(got))
	}
	if got[3].Title != "Water-Saving Routines" || got[3].Icon != "water" {
		t.Errorf("unexpected last trend %+v", got[3])
	}
}

func TestFetch_Delay(t *testing.T) {
	start := time.Now()
	if _, err := testCatalog(30 * time.Millisecond).Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms delay, got %v", elapsed)
	}
}

func TestFetch_Canceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := testCatalog(time.Hour).Fetch(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestCatalog_IsNeverMutated(t *testing.T) {
	c := testCatalog(0)
	all := c.All()
	all[0].Title = "changed"

	if c.All()[0].Title != "AI Skin Analysis" {
		t.Error("catalog was mutated through returned slice")
	}
}

func TestCategorize(t *testing.T) {
	groups := Categorize(testCatalog(0).All())

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	expected := map[string]int{"AI": 1, "Eco": 2, "Style": 1}
	for _, g := range groups {
		if len(g.Trends) != expected[g.Category] {
			t.Errorf("category %s: expected %d trends, got %d", g.Category, expected[g.Category], len(g.Trends))
		}
	}
	if groups[1].Trends[1].Title != "Water-Saving Routines" {
		t.Errorf("expected catalog order within category, got %s", groups[1].Trends[1].Title)
	}
}

func TestCategorize_EmptyCategoriesKept(t *testing.T) {
	groups := Categorize([]Trend{{Title: "x", Category: "eco"}, {Title: "y", Category: "Other"}})
	if len(groups) != 3 || len(groups[0].Trends) != 0 || len(groups[1].Trends) != 1 {
		t.Errorf("unexpected groups %+v", groups)
	}
}

func TestExpanded(t *testing.T) {
	all := testCatalog(0).All()
	more := Expanded(all)
	if len(more) != 2 || more[0].Title != "Graphic Eyeliners" {
		t.Errorf("expected trends after the first two, got %+v", more)
	}

	if got := Expanded(all[:2]); len(got) != 0 {
		t.Errorf("expected nothing to expand, got %+v", got)
	}
}
