package media

import (
	"context"
	"sync"

	"github.com/kozaktomas/frushion/internal/frame"
)

// StaticSource serves frames from memory. It is used for uploads and tests.
type StaticSource struct {
	mu     sync.Mutex
	frames []*frame.Frame
	err    error // returned by Open when set
	opened int
}

// NewStaticSource creates a source cycling over the given frames.
func NewStaticSource(frames ...*frame.Frame) *StaticSource {
	return &StaticSource{frames: frames}
}

// NewFailingSource creates a source whose Open always fails with err.
func NewFailingSource(err error) *StaticSource {
	return &StaticSource{err: err}
}

func (s *StaticSource) Name() string {
	return "static"
}

func (s *StaticSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.opened++
	return &staticStream{frames: s.frames}, nil
}

// Opened returns how many streams were opened.
func (s *StaticSource) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

type staticStream struct {
	mu     sync.Mutex
	frames []*frame.Frame
	next   int
	closed bool
}

func (st *staticStream) ReadFrame(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, ErrClosed
	}
	if len(st.frames) == 0 {
		return nil, ErrNoFrame
	}
	f := st.frames[st.next]
	st.next = (st.next + 1) % len(st.frames)
	if f.Empty() {
		return nil, ErrNoFrame
	}
	return f, nil
}

func (st *staticStream) Close() error {
	st.mu.Lock()
	st.closed = true
	st.mu.Unlock()
	return nil
}
