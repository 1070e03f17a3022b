package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
)

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNew_DefaultURL(t *testing.T) {
	if c := New(""); c.BaseURL() != "http://localhost:5000" {
		t.Errorf("expected default URL, got %s", c.BaseURL())
	}
	if c := New("http://svc:5000/"); c.BaseURL() != "http://svc:5000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestAnalyzeExpression(t *testing.T) {
	data := testJPEG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze_expression" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart field 'file': %v", err)
			return
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("expected image/jpeg part, got %s", header.Header.Get("Content-Type"))
		}
		got, _ := io.ReadAll(file)
		if !bytes.Equal(got, data) {
			t.Error("uploaded bytes differ")
		}

		json.NewEncoder(w).Encode(ExpressionResponse{Status: "success", Expression: "happy", Emoji: "😊", Message: "Looking good"})
	}))
	defer server.Close()

	resp, err := New(server.URL).AnalyzeExpression(context.Background(), data)
	if err != nil {
		t.Fatalf("AnalyzeExpression failed: %v", err)
	}
	if resp.Expression != "happy" || resp.Emoji != "😊" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAnalyzeExpression_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExpressionResponse{Status: "error", Message: "No face detected"})
	}))
	defer server.Close()

	_, err := New(server.URL).AnalyzeExpression(context.Background(), testJPEG(t))
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
	var rejection *RejectionError
	if !errors.As(err, &rejection) || rejection.Message != "No face detected" {
		t.Errorf("expected the service message to be kept, got %v", err)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
		wantErr  error
	}{
		{"formatted string", http.StatusOK, `{"score":"42.17/100"}`, "42.17/100", nil},
		{"bare number", http.StatusOK, `{"score":61.8}`, "61.80/100", nil},
		{"error payload", http.StatusBadRequest, `{"error":"No valid face detected or image is unclear"}`, "", ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/score" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				var req struct {
					Landmarks [][]float64 `json:"landmarks"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Landmarks) != 5 {
					t.Errorf("expected 5 landmark pairs, got %v (%v)", req.Landmarks, err)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			landmarks := make([]beauty.Point, 5)
			got, err := New(server.URL).Score(context.Background(), landmarks)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestScore_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	if _, err := New(server.URL).Score(context.Background(), make([]beauty.Point, 5)); err == nil {
		t.Error("expected error for non-JSON 500")
	}
}

func TestApplyFilters(t *testing.T) {
	var mu sync.Mutex
	var received [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filters []string `json:"filters"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		received = append(received, req.Filters)
		mu.Unlock()
		// Response is ignored, even on errors
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.ApplyFilters(context.Background(), []string{"Lips", "Eye"}); err != nil {
		t.Fatalf("ApplyFilters failed: %v", err)
	}
	if err := c.ApplyFilters(context.Background(), nil); err != nil {
		t.Fatalf("ApplyFilters failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 || len(received[0]) != 2 || received[1] == nil || len(received[1]) != 0 {
		t.Errorf("unexpected payloads %v", received)
	}
}

func TestApplyFilters_Unreachable(t *testing.T) {
	if err := New("http://127.0.0.1:1").ApplyFilters(context.Background(), []string{"Lips"}); err == nil {
		t.Error("expected transport error")
	}
}

func TestAnalyzeFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("frame"); err != nil {
			t.Errorf("expected multipart field 'frame': %v", err)
		}
		w.Write([]byte(`{"score": 73.5}`))
	}))
	defer server.Close()

	score, err := New(server.URL).AnalyzeFrame(context.Background(), testJPEG(t))
	if err != nil {
		t.Fatalf("AnalyzeFrame failed: %v", err)
	}
	if score != 73.5 {
		t.Errorf("expected 73.5, got %v", score)
	}
}

func TestAnalyzeFrame_EmptyScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if _, err := New(server.URL).AnalyzeFrame(context.Background(), testJPEG(t)); err == nil {
		t.Error("expected error for missing score")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"bmp", []byte{0x42, 0x4D, 0, 0, 0, 0, 0, 0}, "image/bmp"},
		{"short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte("plain text"), "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := detectMIMEType(tt.data); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, got)
		}
	}
}

func TestExpressionClassifier(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			json.NewEncoder(w).Encode(ExpressionResponse{Status: "success", Expression: "sad", Message: "Cheer up"})
			return
		}
		json.NewEncoder(w).Encode(ExpressionResponse{Status: "error", Message: "No face detected"})
	}))
	defer server.Close()

	f, err := frame.Decode(testJPEG(t), "test")
	if err != nil {
		t.Fatal(err)
	}
	c := NewExpressionClassifier(New(server.URL))

	result, err := c.Classify(context.Background(), f)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.Emoji != "😢" || result.Animation != expression.AnimationPulse || result.Message != "Cheer up" {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := c.Classify(context.Background(), f); !errors.Is(err, expression.ErrNoFace) {
		t.Errorf("expected ErrNoFace on rejection, got %v", err)
	}
}
