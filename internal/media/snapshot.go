package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/frame"
)

// SnapshotSource polls an IP camera endpoint that returns the current picture as JPEG.
type SnapshotSource struct {
	url    string
	client *http.Client
}

func NewSnapshotSource(url string) *SnapshotSource {
	return &SnapshotSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SnapshotSource) Name() string {
	return "snapshot:" + s.url
}

// Open probes the endpoint once so that permission problems surface immediately.
func (s *SnapshotSource) Open(ctx context.Context) (Stream, error) {
	st := &snapshotStream{source: s}
	if _, err := st.ReadFrame(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

type snapshotStream struct {
	source *SnapshotSource
	mu     sync.Mutex
	closed bool
}

func (st *snapshotStream) ReadFrame(ctx context.Context) (*frame.Frame, error) {
	st.mu.Lock()
	closed := st.closed
	st.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.source.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := st.source.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrPermissionDenied, resp.StatusCode)
	case http.StatusNoContent, http.StatusServiceUnavailable:
		return nil, ErrNoFrame
	default:
		return nil, fmt.Errorf("snapshot error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFrame
	}

	return frame.Decode(data, st.source.url)
}

func (st *snapshotStream) Close() error {
	st.mu.Lock()
	st.closed = true
	st.mu.Unlock()
	return nil
}
