package frame

import (
	"image/color"
	"math"
)

// LuminanceStats summarizes the grayscale distribution of a frame.
type LuminanceStats struct {
	Mean     float64 // 0-255
	Variance float64 // population variance of the 0-255 gray values
	Pixels   int
}

// StdDev returns the standard deviation of the gray values.
func (s LuminanceStats) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

// Luminance computes mean and variance of the grayscale values of the frame.
// An empty frame yields zero stats.
func (f *Frame) Luminance() LuminanceStats {
	if f.Empty() {
		return LuminanceStats{}
	}

	bounds := f.Image.Bounds()
	var sum, sumSq float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(f.Image.At(x, y)).(color.Gray)
			v := float64(g.Y)
			sum += v
			sumSq += v * v
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return LuminanceStats{Mean: mean, Variance: variance, Pixels: n}
}
