package expression

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/kozaktomas/frushion/internal/frame"
)

// SimulatedClassifier scores every label with pseudo-random values.
type SimulatedClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedClassifier creates a simulated classifier. A nil rng uses the global source.
func NewSimulatedClassifier(rng *rand.Rand) *SimulatedClassifier {
	return &SimulatedClassifier{rng: rng}
}

func (c *SimulatedClassifier) Name() string {
	return "simulated"
}

// Classify ignores the frame content but still fails on empty frames.
func (c *SimulatedClassifier) Classify(ctx context.Context, f *frame.Frame) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if f.Empty() {
		return Result{}, ErrNoFace
	}

	scores := make(Scores, len(Labels))
	c.mu.Lock()
	for _, label := range Labels {
		if c.rng == nil {
			scores[label] = rand.Float64()
		} else {
			scores[label] = c.rng.Float64()
		}
	}
	c.mu.Unlock()

	return FromScores(scores)
}
