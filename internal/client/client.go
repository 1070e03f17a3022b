// Package client talks to the external analysis service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/frushion/internal/beauty"
)

const defaultServiceURL = "http://localhost:5000"

// ErrRejected is returned when the service answers with an error payload.
var ErrRejected = errors.New("analysis rejected")

// RejectionError carries the message of an error payload. It matches ErrRejected.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return ErrRejected
}

// Client calls the analysis service endpoints.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client. An empty baseURL uses http://localhost:5000.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ExpressionResponse is the body of POST /analyze_expression.
type ExpressionResponse struct {
	Status     string `json:"status"`
	Expression string `json:"expression"`
	Emoji      string `json:"emoji"`
	Message    string `json:"message"`
}

type scoreRequest struct {
	Landmarks []beauty.Point `json:"landmarks"`
}

type scoreResponse struct {
	Score json.RawMessage `json:"score"`
	Error string          `json:"error"`
}

type filtersRequest struct {
	Filters []string `json:"filters"`
}

type frameScoreResponse struct {
	Score *float64 `json:"score"`
	Error string   `json:"error"`
}

// AnalyzeExpression uploads a frame as multipart field "file".
// A status other than "success" is returned as ErrRejected with the service message.
func (c *Client) AnalyzeExpression(ctx context.Context, imageData []byte) (*ExpressionResponse, error) {
	body, _, err := c.postMultipartImage(ctx, "/analyze_expression", "file", imageData)
	if err != nil {
		return nil, err
	}

	var resp ExpressionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != "success" {
		return &resp, &RejectionError{Message: resp.Message}
	}
	return &resp, nil
}

// Score posts five landmarks to /api/score and returns the formatted score, e.g. "42.17/100".
func (c *Client) Score(ctx context.Context, landmarks []beauty.Point) (string, error) {
	body, status, err := c.postJSON(ctx, "/api/score", scoreRequest{Landmarks: landmarks})
	if err != nil {
		return "", err
	}

	var resp scoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", status, err)
	}
	if resp.Error != "" {
		return "", &RejectionError{Message: resp.Error}
	}
	if status != http.StatusOK || len(resp.Score) == 0 || string(resp.Score) == "null" {
		return "", fmt.Errorf("API error (status %d): %s", status, string(body))
	}

	// The score is either a preformatted string or a bare number.
	var formatted string
	if err := json.Unmarshal(resp.Score, &formatted); err == nil {
		return formatted, nil
	}
	var n float64
	if err := json.Unmarshal(resp.Score, &n); err != nil {
		return "", fmt.Errorf("unexpected score value %s", string(resp.Score))
	}
	return beauty.Score(n).String(), nil
}

// ApplyFilters posts the selected filters. The response body is ignored.
func (c *Client) ApplyFilters(ctx context.Context, filters []string) error {
	if filters == nil {
		filters = []string{}
	}
	_, _, err := c.postJSON(ctx, "/apply-filters", filtersRequest{Filters: filters})
	return err
}

// AnalyzeFrame uploads a frame as multipart field "frame" to /analyze and returns its score.
func (c *Client) AnalyzeFrame(ctx context.Context, imageData []byte) (float64, error) {
	body, _, err := c.postMultipartImage(ctx, "/analyze", "frame", imageData)
	if err != nil {
		return 0, err
	}

	var resp frameScoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != "" {
		return 0, &RejectionError{Message: resp.Error}
	}
	if resp.Score == nil {
		return 0, errors.New("empty score returned")
	}
	return *resp.Score, nil
}

// postMultipartImage posts the image as a single form file field and requires a 200 answer.
func (c *Client) postMultipartImage(ctx context.Context, endpoint, field string, imageData []byte) ([]byte, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="frame.jpg"`, field))
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, 0, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, status, err := c.do(req)
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusOK {
		return nil, status, fmt.Errorf("API error (status %d): %s", status, string(body))
	}
	return body, status, nil
}

// postJSON posts a JSON body and returns the raw answer whatever its status.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, int, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// BMP: 42 4D
	if data[0] == 0x42 && data[1] == 0x4D {
		return "image/bmp"
	}
	return "application/octet-stream"
}
