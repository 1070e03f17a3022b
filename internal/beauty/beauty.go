// Package beauty scores faces from facial landmarks and frames from their brightness.
package beauty

import (
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/frame"
)

// ErrNoFace is returned when fewer than five landmarks are available.
var ErrNoFace = errors.New("no valid face detected or image is unclear")

// Score is a beauty score in [0,100] rounded to two decimals.
type Score float64

// String formats the score the way it is displayed, e.g. "42.17/100".
func (s Score) String() string {
	return fmt.Sprintf("%.2f/100", float64(s))
}

// GoldenRatioScore scores five landmarks ordered left eye, right eye, nose tip,
// mouth left, mouth right. Extra landmarks are ignored.
//
//	r1 = |LE-RE| / |N-LE|
//	r2 = |ML-N|  / |N-LE|
//	score = clamp((|r1-phi| + |r2-phi|) * 50, 0, 100)
//
// A zero nose-to-eye distance makes both ratios infinite, which clamps to 100.
func GoldenRatioScore(landmarks []Point) (Score, error) {
	if len(landmarks) < constants.MinLandmarks {
		return 0, ErrNoFace
	}
	leftEye, rightEye, nose, mouthLeft := landmarks[0], landmarks[1], landmarks[2], landmarks[3]

	base := nose.Distance(leftEye)
	if base == 0 {
		return 100, nil
	}

	r1 := leftEye.Distance(rightEye) / base
	r2 := mouthLeft.Distance(nose) / base

	raw := (math.Abs(r1-constants.GoldenRatio) + math.Abs(r2-constants.GoldenRatio)) * constants.ScoreWeight
	return Score(round2(clamp(raw, 0, 100))), nil
}

// BrightnessScore rates a frame by its mean grayscale value scaled to 0-100.
func BrightnessScore(f *frame.Frame) (Score, error) {
	if f.Empty() {
		return 0, frame.ErrEmpty
	}
	stats := f.Luminance()
	return Score(round2(stats.Mean / 255 * 100)), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
