// Package skin classifies skin tone and texture and derives care tips from the result.
package skin

import (
	"math/rand/v2"
	"time"

	"github.com/kozaktomas/frushion/internal/frame"
)

// NoAnalysis is the placeholder shown for every field before the first analysis.
const NoAnalysis = "No analysis yet"

// Tone buckets, darkest first.
const (
	ToneDeep   = "Deep"
	ToneTan    = "Tan"
	ToneMedium = "Medium"
	ToneLight  = "Light"
	ToneFair   = "Fair"
)

// Texture labels.
const (
	TextureVerySmooth = "Very Smooth"
	TextureSmooth     = "Smooth"
	TextureNormal     = "Normal"
	TextureDry        = "Dry"
	TextureAcneProne  = "Acne-Prone"
	TextureOily       = "Oily"
)

// Tones lists every tone bucket in classification order.
var Tones = []string{ToneDeep, ToneTan, ToneMedium, ToneLight, ToneFair}

// Result is one skin analysis record.
type Result struct {
	SkinTone   string    `json:"skin_tone"`
	Texture    string    `json:"texture"`
	Elasticity string    `json:"elasticity"`
	Hydration  string    `json:"hydration"`
	Timestamp  time.Time `json:"timestamp"`
}

// Empty returns the placeholder record displayed before any analysis ran.
func Empty() Result {
	return Result{
		SkinTone:   NoAnalysis,
		Texture:    NoAnalysis,
		Elasticity: NoAnalysis,
		Hydration:  NoAnalysis,
	}
}

// IsEmpty reports whether the record still holds placeholders.
func (r Result) IsEmpty() bool {
	return r.SkinTone == NoAnalysis || r.SkinTone == ""
}

// ClassifyTone maps a value in [0,1) to a tone bucket.
func ClassifyTone(v float64) string {
	switch {
	case v < 0.4:
		return ToneDeep
	case v < 0.55:
		return ToneTan
	case v < 0.7:
		return ToneMedium
	case v < 0.85:
		return ToneLight
	default:
		return ToneFair
	}
}

// ClassifyTexture maps a texture variance in [0,100) to texture, elasticity and hydration.
// A variance of exactly 40 falls through every range and is classified as oily skin.
func ClassifyTexture(variance float64) (texture, elasticity, hydration string) {
	switch {
	case variance < 10:
		return TextureVerySmooth, "High", "Optimal"
	case variance < 25:
		return TextureSmooth, "Moderate", "Good"
	case variance < 40:
		return TextureNormal, "Moderate", "Average"
	case variance > 40 && variance <= 60:
		return TextureDry, "Low", "Low"
	case variance > 60:
		return TextureAcneProne, "Low", "Very Low"
	default:
		return TextureOily, "Moderate", "High"
	}
}

// Classify builds a result from a tone value and a texture variance.
func Classify(toneValue, textureVariance float64, at time.Time) Result {
	texture, elasticity, hydration := ClassifyTexture(textureVariance)
	return Result{
		SkinTone:   ClassifyTone(toneValue),
		Texture:    texture,
		Elasticity: elasticity,
		Hydration:  hydration,
		Timestamp:  at,
	}
}

// Sampler produces the raw tone value and texture variance for a frame.
type Sampler interface {
	Sample(f *frame.Frame) (toneValue, textureVariance float64)
}

// RandomSampler simulates measurements with a pseudo-random source.
type RandomSampler struct {
	rng *rand.Rand
}

// NewRandomSampler creates a sampler. A nil rng uses the global source.
func NewRandomSampler(rng *rand.Rand) *RandomSampler {
	return &RandomSampler{rng: rng}
}

// Sample ignores the frame and returns simulated values.
func (s *RandomSampler) Sample(_ *frame.Frame) (float64, float64) {
	if s.rng == nil {
		return rand.Float64(), rand.Float64() * 100
	}
	return s.rng.Float64(), s.rng.Float64() * 100
}

// PixelSampler derives the values from the frame luminance: mean brightness drives the tone
// and the gray-level standard deviation (as a percentage of its theoretical maximum) drives
// the texture variance.
type PixelSampler struct{}

// Sample computes tone value in [0,1] and texture variance in [0,100].
func (PixelSampler) Sample(f *frame.Frame) (float64, float64) {
	stats := f.Luminance()
	if stats.Pixels == 0 {
		return 0, 0
	}
	tone := stats.Mean / 255
	// 127.5 is the largest possible std dev of 0-255 values.
	texture := stats.StdDev() / 127.5 * 100
	if texture > 100 {
		texture = 100
	}
	return tone, texture
}

// Analyzer classifies frames with a sampler.
type Analyzer struct {
	sampler Sampler
	now     func() time.Time
}

// NewAnalyzer creates an analyzer. A nil sampler defaults to PixelSampler.
func NewAnalyzer(sampler Sampler) *Analyzer {
	if sampler == nil {
		sampler = PixelSampler{}
	}
	return &Analyzer{sampler: sampler, now: time.Now}
}

// Analyze classifies a single frame.
func (a *Analyzer) Analyze(f *frame.Frame) Result {
	tone, variance := a.sampler.Sample(f)
	return Classify(tone, variance, a.now().UTC())
}
