package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	usageTracker
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &GeminiProvider{client: client}
	p.inputPrice = pricing.Input
	p.outputPrice = pricing.Output
	return p, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) AnalyzeExpression(ctx context.Context, imageData []byte) (*ExpressionAnalysis, error) {
	var analysis ExpressionAnalysis
	if err := p.analyzeImage(ctx, expressionPrompt, imageData, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (p *GeminiProvider) AnalyzeSkin(ctx context.Context, imageData []byte) (*SkinAnalysis, error) {
	var analysis SkinAnalysis
	if err := p.analyzeImage(ctx, skinPrompt, imageData, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (p *GeminiProvider) analyzeImage(ctx context.Context, systemPrompt string, imageData []byte, out any) error {
	resizedData, err := prepareImage(imageData)
	if err != nil {
		return err
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemPrompt + "\n\n" + userMessage},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			p.trackUsage(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))
		}

		content := result.Text()
		if content == "" {
			return errors.New("no response from Gemini")
		}
		lastResponse = content

		if err := json.Unmarshal([]byte(content), out); err != nil {
			lastError = err

			// Add model response and error feedback to contents for retry
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: jsonFixMessage(err)}},
				},
			)
			continue
		}

		return nil
	}

	return fmt.Errorf("failed to parse analysis JSON after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
