// Package frame holds single captured video samples and encodes them for transport.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrEmpty is returned when a frame has no pixels to work with.
var ErrEmpty = errors.New("frame is empty")

// Frame is an ephemeral image sample. It has no identity and is discarded
// after one analysis round.
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
	Source     string // human readable origin (file name, URL)
}

// New wraps an image into a frame captured now.
func New(img image.Image, source string) *Frame {
	return &Frame{Image: img, CapturedAt: time.Now(), Source: source}
}

// Decode decodes JPEG, PNG or BMP bytes into a frame.
func Decode(data []byte, source string) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return New(img, source), nil
}

// Empty reports whether the frame carries no readable pixels.
func (f *Frame) Empty() bool {
	if f == nil || f.Image == nil {
		return true
	}
	return f.Image.Bounds().Empty()
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f.Empty() {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f.Empty() {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// Resize returns a copy of the frame scaled to fit within maxSize while keeping aspect ratio.
// Frames that already fit are returned unchanged.
func (f *Frame) Resize(maxSize int) *Frame {
	return f.Fit(maxSize, maxSize)
}

// Fit returns a copy of the frame scaled down to fit a maxWidth x maxHeight box while
// keeping aspect ratio. Frames that already fit are returned unchanged.
func (f *Frame) Fit(maxWidth, maxHeight int) *Frame {
	if f.Empty() || maxWidth <= 0 || maxHeight <= 0 {
		return f
	}

	bounds := f.Image.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxWidth && height <= maxHeight {
		return f
	}

	var newWidth, newHeight int
	if width*maxHeight > height*maxWidth {
		newWidth = maxWidth
		newHeight = max(1, height*maxWidth/width)
	} else {
		newHeight = maxHeight
		newWidth = max(1, width*maxHeight/height)
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), f.Image, bounds, draw.Over, nil)

	return &Frame{Image: resized, CapturedAt: f.CapturedAt, Source: f.Source}
}

// EncodeJPEG serializes the frame as JPEG.
func (f *Frame) EncodeJPEG(quality int) ([]byte, error) {
	if f.Empty() {
		return nil, ErrEmpty
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode resizes the frame to maxSize and encodes it as JPEG for transport.
func (f *Frame) Encode(maxSize, quality int) ([]byte, error) {
	return f.Resize(maxSize).EncodeJPEG(quality)
}

// ResizeImage resizes encoded image bytes to fit within maxSize (width or height) while keeping
// aspect ratio. The result is always JPEG.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	f, err := Decode(data, "")
	if err != nil {
		return nil, err
	}
	out, err := f.Encode(maxSize, 85)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return out, nil
}
