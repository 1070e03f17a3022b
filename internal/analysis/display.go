package analysis

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/client"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
	"github.com/kozaktomas/frushion/internal/media"
	"github.com/kozaktomas/frushion/internal/skin"
)

// User visible messages.
const (
	MsgCameraPermission   = "Unable to access camera. Please check permissions."
	MsgCameraUnavailable  = "Camera access denied or unavailable."
	MsgCenterFace         = "No face detected. Please center your face."
	MsgScoreFailed        = "Error while fetching score."
	MsgNoLandmarks        = "No face landmarks available."
	MsgNoValidFace        = "No valid face detected or image is unclear"
	MsgUndetectedFace     = "Unable to detect face"
	MsgAnalysisFailed     = "Analysis failed. Please try again."
	ExpressionPlaceholder = "Expression not detected yet"
	ExpressionNoFace      = "No face detected"
)

// Stats counts analysis rounds.
type Stats struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Stale     int `json:"stale"`
}

// State is the rendered display state.
type State struct {
	SessionID         string      `json:"session_id,omitempty"`
	Mode              string      `json:"mode"`
	Running           bool        `json:"running"`
	Skin              skin.Result `json:"skin"`
	Tips              []string    `json:"tips"`
	Expression        string      `json:"expression"`
	Emoji             string      `json:"emoji"`
	Animation         string      `json:"animation"`
	ExpressionMessage string      `json:"expression_message"`
	Score             string      `json:"score"`
	FaceDetected      bool        `json:"face_detected"`
	Message           string      `json:"message"`
	Sequence          uint64      `json:"sequence"`
	UpdatedAt         *time.Time  `json:"updated_at,omitempty"`
	Stats             Stats       `json:"stats"`
}

// InitialState returns the placeholders shown before any analysis.
func InitialState(mode string) State {
	return State{
		Mode:       mode,
		Skin:       skin.Empty(),
		Tips:       []string{},
		Expression: ExpressionPlaceholder,
		Emoji:      expression.DefaultEmoji,
		Animation:  expression.AnimationIdle,
	}
}

// Display holds the rendered state and publishes every change.
// Results older than the last rendered sequence number are dropped.
type Display struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
	pub   func(State)
}

// NewDisplay creates a display. pub may be nil.
func NewDisplay(mode string, pub func(State)) *Display {
	return &Display{state: InitialState(mode), now: time.Now, pub: pub}
}

// Snapshot returns a copy of the current state.
func (d *Display) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.copyLocked()
}

func (d *Display) copyLocked() State {
	s := d.state
	s.Tips = slices.Clone(d.state.Tips)
	if d.state.UpdatedAt != nil {
		t := *d.state.UpdatedAt
		s.UpdatedAt = &t
	}
	return s
}

// update applies fn under the lock and publishes the new state.
func (d *Display) update(fn func(s *State) bool) bool {
	d.mu.Lock()
	changed := fn(&d.state)
	snapshot := d.copyLocked()
	d.mu.Unlock()

	if changed && d.pub != nil {
		d.pub(snapshot)
	}
	return changed
}

func (d *Display) touch(s *State, seq uint64) {
	now := d.now().UTC()
	s.Sequence = seq
	s.UpdatedAt = &now
}

// stale reports whether a round is older than what is already rendered.
func stale(s *State, seq uint64) bool {
	if seq <= s.Sequence {
		s.Stats.Stale++
		return true
	}
	return false
}

// ApplyResult renders a successful round. It returns false for a stale result.
func (d *Display) ApplyResult(seq uint64, out Outcome) bool {
	return d.update(func(s *State) bool {
		if stale(s, seq) {
			return false
		}
		if out.Skin != nil {
			s.Skin = *out.Skin
			s.Tips = skin.Tips(*out.Skin)
		}
		if out.Expression != nil {
			e := out.Expression
			s.Expression = e.Expression
			s.Emoji = e.Emoji
			if s.Emoji == "" {
				s.Emoji = expression.Emoji(e.Expression)
			}
			s.Animation = e.Animation
			if s.Animation == "" {
				s.Animation = expression.Animation(e.Expression)
			}
			s.ExpressionMessage = e.Message
		}
		if s.Mode == ModeScore || s.Mode == ModeBrightness {
			s.Score = out.Score
		}
		s.FaceDetected = true
		s.Message = ""
		s.Stats.Completed++
		d.touch(s, seq)
		return true
	})
}

// ApplyError renders a failed round with a message and neutral fallbacks.
// It returns false for a stale result.
func (d *Display) ApplyError(seq uint64, err error) bool {
	return d.update(func(s *State) bool {
		if stale(s, seq) {
			return false
		}
		s.FaceDetected = false
		s.Message = ErrorMessage(s.Mode, err)
		switch s.Mode {
		case ModeSkin:
			s.Skin = skin.Empty()
			s.Tips = []string{}
		case ModeExpression:
			s.Emoji = expression.DefaultEmoji
			s.Animation = expression.AnimationNeutral
			if isNoFace(err) {
				s.Expression = ExpressionNoFace
				s.ExpressionMessage = MsgUndetectedFace
			} else {
				s.Expression = ExpressionPlaceholder
				s.ExpressionMessage = ""
			}
		case ModeScore, ModeBrightness:
			s.Score = ""
		}
		s.Stats.Failed++
		d.touch(s, seq)
		return true
	})
}

// ApplyOpenError renders a failure to acquire the camera stream.
func (d *Display) ApplyOpenError(err error) {
	d.update(func(s *State) bool {
		s.Running = false
		s.FaceDetected = false
		s.Message = OpenErrorMessage(err)
		return true
	})
}

// SetRunning marks the session as running or stopped.
func (d *Display) SetRunning(running bool) {
	d.update(func(s *State) bool {
		if s.Running == running {
			return false
		}
		s.Running = running
		return true
	})
}

// SetSessionID records the owning session.
func (d *Display) SetSessionID(id string) {
	d.mu.Lock()
	d.state.SessionID = id
	d.mu.Unlock()
}

// CountSkipped records a trigger dropped by the in-flight guard.
func (d *Display) CountSkipped() {
	d.mu.Lock()
	d.state.Stats.Skipped++
	d.mu.Unlock()
}

// Reset restores the placeholders. Rounds issued up to minSeq are discarded when they finish.
func (d *Display) Reset(minSeq uint64) {
	d.update(func(s *State) bool {
		fresh := InitialState(s.Mode)
		fresh.SessionID = s.SessionID
		fresh.Running = s.Running
		fresh.Stats = s.Stats
		fresh.Sequence = max(s.Sequence, minSeq)
		*s = fresh
		return true
	})
}

func isNoFace(err error) bool {
	return errors.Is(err, expression.ErrNoFace) || errors.Is(err, beauty.ErrNoFace)
}

// OpenErrorMessage maps a stream acquisition failure to its message.
func OpenErrorMessage(err error) string {
	if errors.Is(err, media.ErrPermissionDenied) {
		return MsgCameraPermission
	}
	return MsgCameraUnavailable
}

// ErrorMessage maps a failed round to the message shown for the mode.
func ErrorMessage(mode string, err error) string {
	switch {
	case errors.Is(err, media.ErrPermissionDenied):
		return MsgCameraPermission
	case errors.Is(err, media.ErrClosed):
		return MsgCameraUnavailable
	case errors.Is(err, ErrNoLandmarks):
		return MsgNoLandmarks
	case errors.Is(err, media.ErrNoFrame), errors.Is(err, frame.ErrEmpty):
		return MsgCenterFace
	}

	switch mode {
	case ModeExpression:
		if isNoFace(err) {
			return MsgUndetectedFace
		}
	case ModeScore, ModeBrightness:
		var rejection *client.RejectionError
		if errors.As(err, &rejection) && rejection.Message != "" {
			return rejection.Message
		}
		if isNoFace(err) {
			return MsgNoValidFace
		}
		return MsgScoreFailed
	case ModeSkin:
		if isNoFace(err) {
			return MsgCenterFace
		}
	}
	return MsgAnalysisFailed
}
