package ai

import (
	"encoding/base64"
	"fmt"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/frame"
)

// prepareImage shrinks the image to at most constants.MaxImageSize to save tokens.
func prepareImage(data []byte) ([]byte, error) {
	resized, err := frame.ResizeImage(data, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	return resized, nil
}

// dataURL wraps JPEG bytes into a data URL accepted by OpenAI-compatible APIs.
func dataURL(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}
