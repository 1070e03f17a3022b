package expression

import (
	"context"
	"strings"

	"github.com/kozaktomas/frushion/internal/ai"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/frame"
)

// ProviderClassifier asks a vision model to score the expressions.
type ProviderClassifier struct {
	provider ai.Provider
}

func NewProviderClassifier(p ai.Provider) *ProviderClassifier {
	return &ProviderClassifier{provider: p}
}

func (c *ProviderClassifier) Name() string {
	return c.provider.Name()
}

// Usage returns the tokens spent by the provider so far.
func (c *ProviderClassifier) Usage() (ai.Usage, bool) {
	return c.provider.GetUsage(), true
}

// Classify encodes the frame and keeps only known labels of the model answer.
func (c *ProviderClassifier) Classify(ctx context.Context, f *frame.Frame) (Result, error) {
	data, err := f.EncodeJPEG(constants.JPEGQuality)
	if err != nil {
		return Result{}, err
	}

	analysis, err := c.provider.AnalyzeExpression(ctx, data)
	if err != nil {
		return Result{}, err
	}
	if !analysis.FaceDetected {
		return Result{}, ErrNoFace
	}

	scores := make(Scores, len(analysis.Expressions))
	for label, score := range analysis.Expressions {
		label = strings.ToLower(strings.TrimSpace(label))
		if isLabel(label) {
			scores[label] = score
		}
	}
	return FromScores(scores)
}

func isLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}
