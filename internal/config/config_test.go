package config

import (
	"testing"
	"time"
)

func TestLoad_EmbeddedTrends(t *testing.T) {
	cfg := Load()

	if len(cfg.Trends.Items) != 4 {
		t.Fatalf("expected 4 embedded trends, got %d", len(cfg.Trends.Items))
	}

	first := cfg.Trends.Items[0]
	if first.Title != "AI Skin Analysis" {
		t.Errorf("expected first trend 'AI Skin Analysis', got '%s'", first.Title)
	}
	if first.Category != "AI" || first.Tag != "Tech" {
		t.Errorf("unexpected category/tag: %s/%s", first.Category, first.Tag)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CAMERA_SOURCE", "")
	t.Setenv("CAPTURE_TRIGGER", "")
	t.Setenv("CAPTURE_INTERVAL", "")
	t.Setenv("CAPTURE_FPS", "")
	t.Setenv("EXPRESSION_PROVIDER", "")
	t.Setenv("TRENDS_DELAY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MARIADB_DSN", "")

	cfg := Load()

	if cfg.Camera.Source != "dir" {
		t.Errorf("expected default camera source 'dir', got '%s'", cfg.Camera.Source)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Capture.Trigger != "interval" {
		t.Errorf("expected default trigger 'interval', got '%s'", cfg.Capture.Trigger)
	}
	if cfg.Capture.Interval != 0 {
		t.Errorf("expected no default interval, got %v", cfg.Capture.Interval)
	}
	if cfg.Capture.FrameRate != 30 {
		t.Errorf("expected default frame rate 30, got %d", cfg.Capture.FrameRate)
	}
	if cfg.Analysis.ExpressionProvider != "simulated" {
		t.Errorf("expected simulated expression provider, got '%s'", cfg.Analysis.ExpressionProvider)
	}
	if cfg.Trends.Delay != 1500*time.Millisecond {
		t.Errorf("expected trends delay 1.5s, got %v", cfg.Trends.Delay)
	}
	if cfg.HasStorage() {
		t.Error("expected no storage without DATABASE_URL or MARIADB_DSN")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CAMERA_SOURCE", " Snapshot ")
	t.Setenv("CAMERA_SNAPSHOT_URL", "http://cam.local/snapshot.jpg")
	t.Setenv("CAPTURE_TRIGGER", "continuous")
	t.Setenv("CAPTURE_INTERVAL", "100ms")
	t.Setenv("EXPRESSION_PROVIDER", "GEMINI")
	t.Setenv("DATABASE_URL", "postgres://localhost/frushion")

	cfg := Load()

	if cfg.Camera.Source != "snapshot" {
		t.Errorf("expected normalized source 'snapshot', got '%s'", cfg.Camera.Source)
	}
	if cfg.Camera.SnapshotURL != "http://cam.local/snapshot.jpg" {
		t.Errorf("unexpected snapshot URL '%s'", cfg.Camera.SnapshotURL)
	}
	if cfg.Capture.Trigger != "continuous" {
		t.Errorf("expected 'continuous', got '%s'", cfg.Capture.Trigger)
	}
	if cfg.Capture.Interval != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", cfg.Capture.Interval)
	}
	if cfg.Analysis.ExpressionProvider != "gemini" {
		t.Errorf("expected 'gemini', got '%s'", cfg.Analysis.ExpressionProvider)
	}
	if !cfg.HasStorage() {
		t.Error("expected storage to be configured")
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", 7},
		{"valid", "12", 12},
		{"zero", "0", 7},
		{"negative", "-3", 7},
		{"garbage", "abc", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FRUSHION_TEST_INT", tt.value)
			if got := envInt("FRUSHION_TEST_INT", 7); got != tt.expected {
				t.Errorf("envInt(%q) = %d, want %d", tt.value, got, tt.expected)
			}
		})
	}
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"unset", "", time.Second},
		{"valid", "250ms", 250 * time.Millisecond},
		{"zero", "0s", time.Second},
		{"invalid", "soon", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FRUSHION_TEST_DURATION", tt.value)
			if got := envDuration("FRUSHION_TEST_DURATION", time.Second); got != tt.expected {
				t.Errorf("envDuration(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestGetModelPricing(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gpt-4.1-mini")
	if pricing.Standard.Input != 0.40 || pricing.Standard.Output != 1.60 {
		t.Errorf("unexpected gpt-4.1-mini pricing: %+v", pricing)
	}

	if p := cfg.GetModelPricing("gemini-2.5-flash"); p.Standard.Output == 0 {
		t.Error("expected gemini pricing to be embedded")
	}

	if p := cfg.GetModelPricing("unknown-model"); p != (ModelPricing{}) {
		t.Errorf("expected zero pricing for unknown model, got %+v", p)
	}
}

func TestEnvList(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", " https://a.example ,,https://b.example")

	cfg := Load()
	got := cfg.Web.AllowedOrigins
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected allowed origins %v", got)
	}

	t.Setenv("WEB_ALLOWED_ORIGINS", "")
	if got := envList("WEB_ALLOWED_ORIGINS"); got != nil {
		t.Errorf("expected nil for empty env, got %v", got)
	}
}
