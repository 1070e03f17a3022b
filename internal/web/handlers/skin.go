package handlers

import (
	"net/http"

	"github.com/kozaktomas/frushion/internal/skin"
)

// DistributionResponse holds the reference charts of the analysis page.
type DistributionResponse struct {
	Tone    []skin.DistributionPoint `json:"tone"`
	Texture []skin.DistributionPoint `json:"texture"`
}

// SkinDistribution returns the static skin tone and texture charts.
func SkinDistribution(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DistributionResponse{
		Tone:    skin.ToneDistribution(),
		Texture: skin.TextureDistribution(),
	})
}
