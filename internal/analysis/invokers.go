package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/frushion/internal/ai"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/client"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
	"github.com/kozaktomas/frushion/internal/skin"
)

// UsageReporter is implemented by invokers and classifiers that call a vision model.
type UsageReporter interface {
	Usage() (ai.Usage, bool)
}

// ReportedUsage returns the token usage of v when it is backed by a vision model.
func ReportedUsage(v any) (ai.Usage, bool) {
	r, ok := v.(UsageReporter)
	if !ok {
		return ai.Usage{}, false
	}
	return r.Usage()
}

// SkinInvoker classifies skin locally.
type SkinInvoker struct {
	analyzer *skin.Analyzer
}

func NewSkinInvoker(analyzer *skin.Analyzer) *SkinInvoker {
	if analyzer == nil {
		analyzer = skin.NewAnalyzer(nil)
	}
	return &SkinInvoker{analyzer: analyzer}
}

func (i *SkinInvoker) Mode() string { return ModeSkin }

func (i *SkinInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if f.Empty() {
		return Outcome{}, frame.ErrEmpty
	}
	r := i.analyzer.Analyze(f)
	return Outcome{Skin: &r}, nil
}

// ProviderSkinInvoker asks a vision model for the skin measurements and classifies them locally.
type ProviderSkinInvoker struct {
	provider ai.Provider
	now      func() time.Time
}

func NewProviderSkinInvoker(provider ai.Provider) *ProviderSkinInvoker {
	return &ProviderSkinInvoker{provider: provider, now: time.Now}
}

func (i *ProviderSkinInvoker) Mode() string { return ModeSkin }

func (i *ProviderSkinInvoker) Usage() (ai.Usage, bool) {
	if i.provider == nil {
		return ai.Usage{}, false
	}
	return i.provider.GetUsage(), true
}

func (i *ProviderSkinInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if i.provider == nil {
		return Outcome{}, ErrNotConfigured
	}
	data, err := f.Encode(constants.MaxImageSize, constants.JPEGQuality)
	if err != nil {
		return Outcome{}, err
	}
	analysis, err := i.provider.AnalyzeSkin(ctx, data)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s skin analysis: %w", i.provider.Name(), err)
	}
	if !analysis.FaceDetected {
		return Outcome{}, expression.ErrNoFace
	}
	r := skin.Classify(analysis.ToneValue, analysis.TextureVariance, i.now().UTC())
	return Outcome{Skin: &r}, nil
}

// ExpressionInvoker classifies facial expressions.
type ExpressionInvoker struct {
	classifier expression.Classifier
}

func NewExpressionInvoker(classifier expression.Classifier) *ExpressionInvoker {
	return &ExpressionInvoker{classifier: classifier}
}

func (i *ExpressionInvoker) Mode() string { return ModeExpression }

// Usage reports the token usage of a model backed classifier.
func (i *ExpressionInvoker) Usage() (ai.Usage, bool) {
	return ReportedUsage(i.classifier)
}

func (i *ExpressionInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if i.classifier == nil {
		return Outcome{}, ErrNotConfigured
	}
	r, err := i.classifier.Classify(ctx, f)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Expression: &r}, nil
}

// LandmarkSource yields the five scoring landmarks of the face in a frame.
type LandmarkSource interface {
	Landmarks(ctx context.Context, f *frame.Frame) ([]beauty.Point, error)
}

// FixedLandmarks returns the same landmarks for every frame.
type FixedLandmarks []beauty.Point

func (l FixedLandmarks) Landmarks(_ context.Context, _ *frame.Frame) ([]beauty.Point, error) {
	if len(l) == 0 {
		return nil, ErrNoLandmarks
	}
	return l, nil
}

// Scorer turns landmarks into a formatted score such as "42.17/100".
type Scorer interface {
	Score(ctx context.Context, landmarks []beauty.Point) (string, error)
}

// LocalScorer computes the golden ratio score in process.
type LocalScorer struct{}

func (LocalScorer) Score(_ context.Context, landmarks []beauty.Point) (string, error) {
	s, err := beauty.GoldenRatioScore(landmarks)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// ScoreInvoker scores the face proportions. *client.Client works as a remote Scorer.
type ScoreInvoker struct {
	landmarks LandmarkSource
	scorer    Scorer
}

func NewScoreInvoker(landmarks LandmarkSource, scorer Scorer) *ScoreInvoker {
	if scorer == nil {
		scorer = LocalScorer{}
	}
	return &ScoreInvoker{landmarks: landmarks, scorer: scorer}
}

func (i *ScoreInvoker) Mode() string { return ModeScore }

func (i *ScoreInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if i.landmarks == nil {
		return Outcome{}, ErrNoLandmarks
	}
	points, err := i.landmarks.Landmarks(ctx, f)
	if err != nil {
		return Outcome{}, err
	}
	if len(points) == 0 {
		return Outcome{}, ErrNoLandmarks
	}

	score, err := i.scorer.Score(ctx, points)
	if err != nil {
		if errors.Is(err, client.ErrRejected) {
			return Outcome{}, fmt.Errorf("%w: %w", beauty.ErrNoFace, err)
		}
		return Outcome{}, err
	}
	return Outcome{Score: score}, nil
}

// BrightnessInvoker scores the mean frame brightness locally.
type BrightnessInvoker struct{}

func (BrightnessInvoker) Mode() string { return ModeBrightness }

func (BrightnessInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	s, err := beauty.BrightnessScore(f)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Score: s.String()}, nil
}

// FrameScoreInvoker uploads the frame to the /analyze endpoint of the analysis service.
type FrameScoreInvoker struct {
	client *client.Client
}

func NewFrameScoreInvoker(c *client.Client) *FrameScoreInvoker {
	return &FrameScoreInvoker{client: c}
}

func (i *FrameScoreInvoker) Mode() string { return ModeBrightness }

func (i *FrameScoreInvoker) Invoke(ctx context.Context, f *frame.Frame) (Outcome, error) {
	if i.client == nil {
		return Outcome{}, ErrNotConfigured
	}
	data, err := f.Encode(constants.MaxImageSize, constants.JPEGQuality)
	if err != nil {
		return Outcome{}, err
	}
	score, err := i.client.AnalyzeFrame(ctx, data)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Score: beauty.Score(score).String()}, nil
}
