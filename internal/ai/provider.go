package ai

import (
	"context"
	_ "embed"
)

//go:embed prompts/expression.txt
var expressionPrompt string

//go:embed prompts/skin.txt
var skinPrompt string

// maxRetries bounds how often a provider is asked to fix malformed JSON.
const maxRetries = 5

// Provider defines the interface for vision model backends.
type Provider interface {
	Name() string
	AnalyzeExpression(ctx context.Context, imageData []byte) (*ExpressionAnalysis, error)
	AnalyzeSkin(ctx context.Context, imageData []byte) (*SkinAnalysis, error)

	// GetUsage returns the tokens spent since the provider was created.
	GetUsage() Usage
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// ExpressionAnalysis is the model's reading of a face.
type ExpressionAnalysis struct {
	FaceDetected bool `json:"face_detected"`
	// Expressions maps labels (happy, sad, angry, surprised, neutral, fearful, disgusted) to 0-1 scores.
	Expressions map[string]float64 `json:"expressions"`
}

// SkinAnalysis is the model's estimate of skin measurements.
type SkinAnalysis struct {
	FaceDetected bool `json:"face_detected"`
	// ToneValue is 0 for the deepest tone and approaches 1 for the fairest.
	ToneValue float64 `json:"tone_value"`
	// TextureVariance is 0 for perfectly even skin up to 100 for very uneven skin.
	TextureVariance float64 `json:"texture_variance"`
}

// userMessage is sent together with the image on every analysis request.
const userMessage = "Analyze the face in this camera frame."

func jsonFixMessage(err error) string {
	return "JSON parse error: " + err.Error() +
		". Please fix the JSON and try again. Output ONLY valid JSON, no other text."
}
