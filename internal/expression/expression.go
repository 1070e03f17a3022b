// Package expression classifies facial expressions and maps them to display hints.
package expression

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/kozaktomas/frushion/internal/frame"
)

// ErrNoFace is returned by classifiers when the frame contains no face.
var ErrNoFace = errors.New("no face detected")

// Expression labels.
const (
	Happy     = "happy"
	Sad       = "sad"
	Angry     = "angry"
	Surprised = "surprised"
	Neutral   = "neutral"
	Fearful   = "fearful"
	Disgusted = "disgusted"
)

// Labels lists every label a classifier may score.
var Labels = []string{Neutral, Happy, Sad, Angry, Fearful, Disgusted, Surprised}

// DefaultEmoji is shown when no expression could be determined.
const DefaultEmoji = "🤔"

// Animation states.
const (
	AnimationIdle    = "idle"
	AnimationBounce  = "bounce"
	AnimationPulse   = "pulse"
	AnimationWiggle  = "wiggle"
	AnimationNeutral = "neutral"
)

var (
	happyPattern = regexp.MustCompile(`(?i)happy|smile`)
	sadPattern   = regexp.MustCompile(`(?i)sad|cry|down`)
	angryPattern = regexp.MustCompile(`(?i)angry|mad|frustrated`)
)

// Scores maps expression labels to confidence values in [0,1].
type Scores map[string]float64

// Dominant returns the highest scoring label and its score.
// Labels are visited in Labels order, unknown ones alphabetically after them,
// and a tie goes to the label visited last.
func (s Scores) Dominant() (string, float64) {
	labels := make([]string, 0, len(s))
	for _, label := range Labels {
		if _, ok := s[label]; ok {
			labels = append(labels, label)
		}
	}
	var extra []string
	for label := range s {
		if !slices.Contains(Labels, label) {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	labels = append(labels, extra...)

	best, bestScore := "", -1.0
	for _, label := range labels {
		if s[label] >= bestScore {
			best, bestScore = label, s[label]
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}

// Emoji returns the emoji for an expression label.
func Emoji(label string) string {
	switch label {
	case Happy:
		return "😊"
	case Sad:
		return "😢"
	case Angry:
		return "😡"
	case Surprised:
		return "😲"
	case Neutral:
		return "😐"
	default:
		return DefaultEmoji
	}
}

// Animation picks the animation state for a mood.
func Animation(mood string) string {
	switch {
	case happyPattern.MatchString(mood):
		return AnimationBounce
	case sadPattern.MatchString(mood):
		return AnimationPulse
	case angryPattern.MatchString(mood):
		return AnimationWiggle
	default:
		return AnimationNeutral
	}
}

// Result is one expression classification.
type Result struct {
	Expression string  `json:"expression"`
	Emoji      string  `json:"emoji"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
	Animation  string  `json:"animation"`
}

// FromScores builds a result from the dominant label of the scores.
// Empty scores mean no face was found.
func FromScores(scores Scores) (Result, error) {
	label, confidence := scores.Dominant()
	if label == "" {
		return Result{}, ErrNoFace
	}
	return Result{
		Expression: label,
		Emoji:      Emoji(label),
		Confidence: confidence,
		Message:    fmt.Sprintf("Confidence: %.2f", confidence),
		Animation:  Animation(label),
	}, nil
}

// Classifier turns a frame into an expression result.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, f *frame.Frame) (Result, error)
}
