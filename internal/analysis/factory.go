package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/kozaktomas/frushion/internal/ai"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/client"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/media"
	"github.com/kozaktomas/frushion/internal/skin"
)

// ProviderNames lists the vision model backends understood by NewProvider.
var ProviderNames = []string{"openai", "gemini", "ollama", "llamacpp"}

// Classifier and skin source names that are not vision providers.
const (
	SourceSimulated = "simulated"
	SourceRemote    = "remote"
	SourceFrame     = "frame"
	SourceRandom    = "random"
)

// IsProvider reports whether name selects a vision model backend.
func IsProvider(name string) bool {
	return slices.Contains(ProviderNames, name)
}

// NewProvider creates the named vision model backend from the configuration.
func NewProvider(ctx context.Context, cfg *config.Config, name string) (ai.Provider, error) {
	switch name {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		pricing := cfg.GetModelPricing("gpt-4.1-mini")
		return ai.NewOpenAIProvider(cfg.OpenAI.Token,
			ai.RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output},
		), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		pricing := cfg.GetModelPricing("gemini-2.5-flash")
		p, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey,
			ai.RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return p, nil
	case "ollama":
		return ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	case "llamacpp":
		p, err := ai.NewLlamaCppProvider(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp provider: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, gemini, ollama, llamacpp)", name)
	}
}

// NewClassifier creates the named expression classifier.
// Besides the vision providers it accepts "simulated" and "remote".
func NewClassifier(ctx context.Context, cfg *config.Config, name string) (expression.Classifier, error) {
	switch name {
	case "", SourceSimulated:
		return expression.NewSimulatedClassifier(nil), nil
	case SourceRemote:
		if cfg.Analysis.ServiceURL == "" {
			return nil, fmt.Errorf("%w: ANALYSIS_SERVICE_URL is required for the remote classifier", ErrNotConfigured)
		}
		return client.NewExpressionClassifier(client.New(cfg.Analysis.ServiceURL)), nil
	}
	p, err := NewProvider(ctx, cfg, name)
	if err != nil {
		return nil, err
	}
	return expression.NewProviderClassifier(p), nil
}

// InvokerOptions selects the implementation behind an analysis mode.
// Empty fields fall back to the configuration.
type InvokerOptions struct {
	Mode       string
	Expression string // expression classifier name
	Skin       string // "frame", "random" or a vision provider name
	Remote     bool   // score and brightness go through the analysis service
	Landmarks  []beauty.Point
}

// NewInvoker builds the invoker for opts.Mode.
func NewInvoker(ctx context.Context, cfg *config.Config, opts InvokerOptions) (Invoker, error) {
	mode := opts.Mode
	if mode == "" {
		mode = cfg.Capture.Mode
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	remote := func() (*client.Client, error) {
		if cfg.Analysis.ServiceURL == "" {
			return nil, fmt.Errorf("%w: ANALYSIS_SERVICE_URL is required for remote %s analysis", ErrNotConfigured, mode)
		}
		return client.New(cfg.Analysis.ServiceURL), nil
	}

	switch mode {
	case ModeSkin:
		source := opts.Skin
		if source == "" {
			source = cfg.Analysis.SkinSource
		}
		switch source {
		case "", SourceFrame:
			return NewSkinInvoker(skin.NewAnalyzer(skin.PixelSampler{})), nil
		case SourceRandom, SourceSimulated:
			return NewSkinInvoker(skin.NewAnalyzer(skin.NewRandomSampler(nil))), nil
		}
		p, err := NewProvider(ctx, cfg, source)
		if err != nil {
			return nil, err
		}
		return NewProviderSkinInvoker(p), nil

	case ModeExpression:
		name := opts.Expression
		if name == "" {
			name = cfg.Analysis.ExpressionProvider
		}
		c, err := NewClassifier(ctx, cfg, name)
		if err != nil {
			return nil, err
		}
		return NewExpressionInvoker(c), nil

	case ModeScore:
		var scorer Scorer = LocalScorer{}
		if opts.Remote {
			c, err := remote()
			if err != nil {
				return nil, err
			}
			scorer = c
		}
		return NewScoreInvoker(FixedLandmarks(opts.Landmarks), scorer), nil

	default: // ModeBrightness
		if opts.Remote {
			c, err := remote()
			if err != nil {
				return nil, err
			}
			return NewFrameScoreInvoker(c), nil
		}
		return BrightnessInvoker{}, nil
	}
}

// NewSource creates the configured media source. Frames larger than the configured
// camera size are scaled down.
func NewSource(cam config.CameraConfig) (media.Source, error) {
	var src media.Source
	switch cam.Source {
	case "", "dir":
		if cam.Dir == "" {
			return nil, errors.New("CAMERA_DIR environment variable is required for the dir source")
		}
		src = media.NewDirSource(cam.Dir)
	case "snapshot":
		if cam.SnapshotURL == "" {
			return nil, errors.New("CAMERA_SNAPSHOT_URL environment variable is required for the snapshot source")
		}
		src = media.NewSnapshotSource(cam.SnapshotURL)
	default:
		return nil, fmt.Errorf("unknown camera source: %s (supported: dir, snapshot)", cam.Source)
	}

	if cam.Width > 0 && cam.Height > 0 {
		return media.NewSizedSource(src, cam.Width, cam.Height), nil
	}
	return src, nil
}
