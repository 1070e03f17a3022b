package media

import (
	"context"

	"github.com/kozaktomas/frushion/internal/frame"
)

// SizedSource scales the frames of another source down to the capture size.
type SizedSource struct {
	Source
	width, height int
}

// NewSizedSource limits frames of src to width x height. Frames that fit pass unchanged.
func NewSizedSource(src Source, width, height int) *SizedSource {
	return &SizedSource{Source: src, width: width, height: height}
}

func (s *SizedSource) Open(ctx context.Context) (Stream, error) {
	st, err := s.Source.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &sizedStream{Stream: st, width: s.width, height: s.height}, nil
}

type sizedStream struct {
	Stream
	width, height int
}

func (st *sizedStream) ReadFrame(ctx context.Context) (*frame.Frame, error) {
	f, err := st.Stream.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return f.Fit(st.width, st.height), nil
}
