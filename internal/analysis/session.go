package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/frushion/internal/ai"
	"github.com/kozaktomas/frushion/internal/media"
)

// Options configure a session.
type Options struct {
	Trigger Trigger
	// OnResult is called with every rendered (non-stale) outcome.
	OnResult func(ctx context.Context, seq uint64, out Outcome)
}

// Session couples a media source, a trigger policy, an invoker and a display.
// At most one round is in flight; triggers arriving meanwhile are skipped.
type Session struct {
	EventBroadcaster

	id      string
	source  media.Source
	invoker Invoker
	opts    Options
	display *Display

	mu      sync.Mutex
	stream  media.Stream
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool

	inFlight atomic.Bool
	seq      atomic.Uint64
	wg       sync.WaitGroup
	once     sync.Once
}

// NewSession creates a session. Nothing is acquired until Start.
func NewSession(source media.Source, invoker Invoker, opts Options) *Session {
	s := &Session{
		id:      uuid.NewString(),
		source:  source,
		invoker: invoker,
		opts:    opts,
	}
	s.display = NewDisplay(invoker.Mode(), func(st State) {
		s.SendEvent(Event{Type: EventState, Data: st})
	})
	s.display.SetSessionID(s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the analysis mode of the invoker.
func (s *Session) Mode() string {
	return s.invoker.Mode()
}

// Usage reports the vision model tokens spent by the session.
func (s *Session) Usage() (ai.Usage, bool) {
	return ReportedUsage(s.invoker)
}

// TriggerPolicy returns the trigger policy.
func (s *Session) TriggerPolicy() Trigger {
	return s.opts.Trigger
}

// State returns the current display state.
func (s *Session) State() State {
	return s.display.Snapshot()
}

// Start opens the stream and starts the trigger loop. The session lives until Close,
// independent of ctx which only bounds stream acquisition.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}

	stream, err := s.source.Open(ctx)
	if err != nil {
		s.display.ApplyOpenError(err)
		log.Printf("Session %s: failed to open %s: %v", s.id, s.source.Name(), err)
		return fmt.Errorf("failed to open %s source: %w", s.source.Name(), err)
	}

	s.stream = stream
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.started = true
	s.display.SetRunning(true)

	if period := s.opts.Trigger.Period(); period > 0 {
		s.wg.Add(1)
		go s.loop(period)
	}
	log.Printf("Session %s: started %s analysis on %s, trigger %s", s.id, s.Mode(), s.source.Name(), s.opts.Trigger)
	return nil
}

func (s *Session) loop(period time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.Trigger()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Trigger()
		}
	}
}

// acquire takes the in-flight slot.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.started {
		return ErrNotStarted
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.display.CountSkipped()
		s.SendEvent(Event{Type: EventSkipped, Message: ErrBusy.Error()})
		return ErrBusy
	}
	s.wg.Add(1)
	return nil
}

func (s *Session) release() {
	s.inFlight.Store(false)
	s.wg.Done()
}

// Trigger starts a round in the background. It returns false when the round was skipped.
func (s *Session) Trigger() bool {
	if err := s.acquire(); err != nil {
		return false
	}
	go func() {
		defer s.release()
		_, _ = s.round(context.Background())
	}()
	return true
}

// RunOnce runs a round in the calling goroutine and returns its outcome.
// It returns ErrBusy when another round is in flight.
func (s *Session) RunOnce(ctx context.Context) (Outcome, error) {
	if err := s.acquire(); err != nil {
		return Outcome{}, err
	}
	defer s.release()
	return s.round(ctx)
}

// round reads one frame, invokes the analysis and renders the outcome.
func (s *Session) round(parent context.Context) (Outcome, error) {
	seq := s.seq.Add(1)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	f, err := s.stream.ReadFrame(ctx)
	if err == nil {
		var out Outcome
		out, err = s.invoker.Invoke(ctx, f)
		if err == nil {
			if s.display.ApplyResult(seq, out) && s.opts.OnResult != nil {
				s.opts.OnResult(ctx, seq, out)
			}
			return out, nil
		}
	}

	// A round interrupted by Close is not rendered.
	if s.ctx.Err() != nil {
		return Outcome{}, ErrClosed
	}
	if !errors.Is(err, context.Canceled) {
		log.Printf("Session %s: round %d failed: %v", s.id, seq, err)
	}
	s.display.ApplyError(seq, err)
	return Outcome{}, err
}

// Reset discards the rendered result and any round still in flight.
func (s *Session) Reset() {
	s.display.Reset(s.seq.Load())
}

// Close cancels the in-flight round, stops the trigger loop and releases the stream.
// It is safe to call more than once.
func (s *Session) Close() error {
	var closeErr error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		cancel := s.cancel
		stream := s.stream
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()

		if stream != nil {
			if err := stream.Close(); err != nil {
				closeErr = fmt.Errorf("closing stream: %w", err)
			}
		}
		s.display.SetRunning(false)
		s.SendEvent(Event{Type: EventClosed, Message: "Session closed"})
		log.Printf("Session %s: closed, releasing %d listeners", s.id, s.ListenerCount())
		s.CloseListeners()
	})
	return closeErr
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
