package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
)

func testServer(t *testing.T, cameraDir string) *Server {
	t.Helper()
	database.UseMemoryBackend()
	t.Cleanup(database.ResetBackend)

	cfg := &config.Config{
		Camera: config.CameraConfig{Source: "dir", Dir: cameraDir},
		Capture: config.CaptureConfig{
			Trigger:   "manual",
			Interval:  10 * time.Second,
			FrameRate: 30,
			Mode:      "skin",
		},
		Analysis: config.AnalysisConfig{
			ExpressionProvider: "simulated",
			SkinSource:         "frame",
		},
		Trends: config.TrendsConfig{Items: []config.TrendItem{
			{Title: "Glass Skin", Category: "Style", Icon: "✨"},
		}},
	}
	s := NewServer(cfg, 0, "127.0.0.1")
	t.Cleanup(func() { s.liveManager.Stop() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	return recorder
}

func writeFrame(t *testing.T, dir string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "frame.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
}

func TestRoutes(t *testing.T) {
	s := testServer(t, t.TempDir())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/v1/health", "", http.StatusOK, `"ok"`},
		{"config", http.MethodGet, "/api/v1/config", "", http.StatusOK, `"storage":"memory"`},
		{"legacy score", http.MethodPost, "/api/score", `{"landmarks":[[0,0],[1,0],[0,1],[0,2],[1,2]]}`, http.StatusOK, `"61.80/100"`},
		{"score", http.MethodPost, "/api/v1/score", `{}`, http.StatusBadRequest, "Facial landmarks not provided"},
		{"legacy trends", http.MethodGet, "/api/trends", "", http.StatusOK, "Glass Skin"},
		{"trends", http.MethodGet, "/api/v1/trends", "", http.StatusOK, `"preview"`},
		{"distribution", http.MethodGet, "/api/v1/skin/distribution", "", http.StatusOK, `"tone"`},
		{"filters", http.MethodGet, "/api/v1/filters", "", http.StatusOK, `"available"`},
		{"toggle filter", http.MethodPost, "/api/v1/filters/Lips/toggle", "", http.StatusOK, `"selected":["Lips"]`},
		{"apply filters", http.MethodPost, "/apply-filters", `{"filters":["Skin"]}`, http.StatusOK, `"success"`},
		{"analyses", http.MethodGet, "/api/v1/analyses", "", http.StatusOK, "[]"},
		{"missing analysis", http.MethodGet, "/api/v1/analyses/unknown", "", http.StatusNotFound, "analysis not found"},
		{"no live session", http.MethodGet, "/api/v1/live", "", http.StatusNotFound, "no live session"},
		{"index", http.MethodGet, "/", "", http.StatusOK, "<title>Frushion</title>"},
		{"client route", http.MethodGet, "/history", "", http.StatusOK, "<title>Frushion</title>"},
		{"missing asset", http.MethodGet, "/assets/missing.js", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(t, s, tt.method, tt.path, tt.body)
			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d\nBody: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(recorder.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestLiveSessionOverHTTP(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, 230)
	s := testServer(t, dir)

	recorder := do(t, s, http.MethodPost, "/api/v1/live/start", `{"mode":"skin","trigger":"manual"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = do(t, s, http.MethodPost, "/api/v1/live/trigger", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var state struct {
		Skin struct {
			SkinTone string `json:"skin_tone"`
		} `json:"skin"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to parse state: %v", err)
	}
	if state.Skin.SkinTone != "Fair" {
		t.Errorf("expected Fair tone for a bright frame, got %s", state.Skin.SkinTone)
	}

	recorder = do(t, s, http.MethodPost, "/api/v1/analyses", "")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = do(t, s, http.MethodGet, "/api/v1/analyses/export", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "Fair,Very Smooth,High,Optimal,") {
		t.Errorf("unexpected export %s", recorder.Body.String())
	}

	recorder = do(t, s, http.MethodPost, "/api/v1/live/stop", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestLiveSessionCameraUnavailable(t *testing.T) {
	s := testServer(t, t.TempDir())

	recorder := do(t, s, http.MethodPost, "/api/v1/live/start", `{"mode":"skin"}`)
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for an empty camera directory, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "Camera access denied or unavailable.") {
		t.Errorf("expected camera message, got %s", recorder.Body.String())
	}
}
