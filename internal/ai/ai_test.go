package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/option"
)

// Helper functions for creating test images

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(img image.Image) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testImageData() []byte {
	return encodeJPEG(createTestImage(1600, 1200, color.White))
}

// --- extractJSON tests ---

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"surrounding text", "Sure! Here it is: {\"a\":1} Hope that helps.", `{"a":1}`},
		{"nested object", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no object", "no json here", "no json here"},
		{"unterminated", `{"a":{"b":2}`, `{"a":{"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.expected {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// --- Usage tracking tests ---

func TestUsageTracker(t *testing.T) {
	var tr usageTracker
	tr.inputPrice = 0.40
	tr.outputPrice = 1.60

	tr.trackUsage(1_000_000, 500_000)
	tr.trackUsage(0, 500_000)

	usage := tr.GetUsage()
	if usage.InputTokens != 1_000_000 || usage.OutputTokens != 1_000_000 {
		t.Errorf("unexpected token counts: %+v", usage)
	}
	if math.Abs(usage.TotalCost-2.0) > 0.0001 {
		t.Errorf("expected cost 2.0, got %f", usage.TotalCost)
	}
}

// --- Ollama tests ---

func TestOllamaProvider_AnalyzeExpression(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		if req.Model != "test-model" || req.Format != "json" || req.Stream {
			t.Errorf("unexpected request settings: %+v", req)
		}
		if len(req.Messages) != 2 || len(req.Messages[1].Images) != 1 {
			t.Errorf("expected system and user message with one image, got %d messages", len(req.Messages))
		}
		if !strings.Contains(req.Messages[0].Content, "expression") {
			t.Error("expected expression prompt in system message")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model":             "test-model",
			"message":           map[string]string{"role": "assistant", "content": `Here: {"face_detected":true,"expressions":{"happy":0.9,"sad":0.1}}`},
			"done":              true,
			"prompt_eval_count": 100,
			"eval_count":        20,
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL+"/", "test-model")
	analysis, err := p.AnalyzeExpression(context.Background(), testImageData())
	if err != nil {
		t.Fatalf("AnalyzeExpression failed: %v", err)
	}
	if !analysis.FaceDetected || analysis.Expressions["happy"] != 0.9 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
	if usage := p.GetUsage(); usage.InputTokens != 100 || usage.OutputTokens != 20 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestOllamaProvider_RetriesOnInvalidJSON(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)

		content := `{"face_detected": true, "tone_value": 0.6, "texture_variance": 12}`
		if n == 1 {
			content = "not json at all"
		} else if len(req.Messages) != 4 {
			t.Errorf("expected error feedback appended on retry, got %d messages", len(req.Messages))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	analysis, err := p.AnalyzeSkin(context.Background(), testImageData())
	if err != nil {
		t.Fatalf("AnalyzeSkin failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if analysis.ToneValue != 0.6 || analysis.TextureVariance != 12 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
}

func TestOllamaProvider_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "still not json"},
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	if _, err := p.AnalyzeExpression(context.Background(), testImageData()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != maxRetries {
		t.Errorf("expected %d calls, got %d", maxRetries, calls.Load())
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	_, err := p.AnalyzeExpression(context.Background(), testImageData())
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected status 404 error, got %v", err)
	}
}

func TestOllamaProvider_InvalidImage(t *testing.T) {
	p := NewOllamaProvider("http://127.0.0.1:1", "")
	if _, err := p.AnalyzeExpression(context.Background(), []byte("not an image")); err == nil {
		t.Error("expected error for invalid image")
	}
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	p := NewOllamaProvider("", "")
	if p.baseURL != defaultOllamaURL {
		t.Errorf("expected default URL, got %s", p.baseURL)
	}
	if p.Name() != defaultOllamaModel {
		t.Errorf("expected default model, got %s", p.Name())
	}
}

// --- llama.cpp tests ---

func TestNewLlamaCppProvider_URLValidation(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"default", "", false},
		{"http", "http://localhost:8080", false},
		{"https with trailing slash", "https://llama.example.com/", false},
		{"bad scheme", "ftp://localhost:8080", true},
		{"missing host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLlamaCppProvider(tt.url, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLlamaCppProvider(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestLlamaCppProvider_AnalyzeSkin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || !strings.Contains(string(req.Messages[1].Content), "data:image/jpeg;base64,") {
			t.Errorf("expected image data URL in user message")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"face_detected":true,"tone_value":0.9,"texture_variance":5}`}},
			},
			"usage": map[string]int{"prompt_tokens": 50, "completion_tokens": 10},
		})
	}))
	defer server.Close()

	p, err := NewLlamaCppProvider(server.URL, "llava")
	if err != nil {
		t.Fatalf("NewLlamaCppProvider failed: %v", err)
	}

	analysis, err := p.AnalyzeSkin(context.Background(), testImageData())
	if err != nil {
		t.Fatalf("AnalyzeSkin failed: %v", err)
	}
	if analysis.ToneValue != 0.9 || analysis.TextureVariance != 5 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
	if p.GetUsage().InputTokens != 50 {
		t.Errorf("expected 50 input tokens, got %d", p.GetUsage().InputTokens)
	}
}

func TestLlamaCppProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p, _ := NewLlamaCppProvider(server.URL, "")
	if _, err := p.AnalyzeExpression(context.Background(), testImageData()); err == nil {
		t.Error("expected error for empty choices")
	}
}

// --- OpenAI tests ---

func TestOpenAIProvider_AnalyzeExpression(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4.1-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": `{"face_detected":true,"expressions":{"surprised":0.7,"neutral":0.3}}`,
					},
				},
			},
			"usage": map[string]int{"prompt_tokens": 1000, "completion_tokens": 100, "total_tokens": 1100},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", RequestPricing{Input: 0.40, Output: 1.60}, option.WithBaseURL(server.URL+"/"))
	analysis, err := p.AnalyzeExpression(context.Background(), testImageData())
	if err != nil {
		t.Fatalf("AnalyzeExpression failed: %v", err)
	}
	if analysis.Expressions["surprised"] != 0.7 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}

	usage := p.GetUsage()
	if usage.InputTokens != 1000 || usage.OutputTokens != 100 {
		t.Errorf("unexpected usage: %+v", usage)
	}
	expectedCost := 1000.0/1_000_000*0.40 + 100.0/1_000_000*1.60
	if math.Abs(usage.TotalCost-expectedCost) > 1e-9 {
		t.Errorf("expected cost %f, got %f", expectedCost, usage.TotalCost)
	}
}

func TestProviderNames(t *testing.T) {
	if name := NewOpenAIProvider("key", RequestPricing{}).Name(); name != "gpt-4.1-mini" {
		t.Errorf("unexpected OpenAI model name %s", name)
	}
	p, _ := NewLlamaCppProvider("", "")
	if p.Name() != defaultLlamaCppModel {
		t.Errorf("unexpected llama.cpp model name %s", p.Name())
	}
}

// --- Image preparation ---

func TestPrepareImage_ShrinksToMaxSize(t *testing.T) {
	data, err := prepareImage(testImageData())
	if err != nil {
		t.Fatalf("prepareImage failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode prepared image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg, got %s", format)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("expected 800x600, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestDataURL(t *testing.T) {
	if got := dataURL([]byte("abc")); got != "data:image/jpeg;base64,YWJj" {
		t.Errorf("unexpected data URL %s", got)
	}
}

func BenchmarkPrepareImage(b *testing.B) {
	data := testImageData()
	b.ResetTimer()
	for range b.N {
		_, _ = prepareImage(data)
	}
}
