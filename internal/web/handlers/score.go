package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
)

// ScoreHandler serves the analysis service endpoints: landmark scoring, frame brightness
// scoring and expression classification.
type ScoreHandler struct {
	config     *config.Config
	classifier expression.Classifier
}

// NewScoreHandler creates a score handler. A nil classifier uses simulated expressions.
func NewScoreHandler(cfg *config.Config, classifier expression.Classifier) *ScoreHandler {
	if classifier == nil {
		classifier = expression.NewSimulatedClassifier(nil)
	}
	return &ScoreHandler{config: cfg, classifier: classifier}
}

// ScoreRequest is the body of POST /api/score.
type ScoreRequest struct {
	Landmarks []beauty.Point `json:"landmarks"`
}

// ScoreResponse carries a formatted golden ratio score.
type ScoreResponse struct {
	Score string `json:"score"`
}

// Score computes the golden ratio score of five landmarks.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Landmarks == nil {
		respondError(w, http.StatusBadRequest, "Facial landmarks not provided")
		return
	}
	if len(req.Landmarks) < constants.MinLandmarks {
		respondError(w, http.StatusBadRequest, analysis.MsgNoValidFace)
		return
	}

	score, err := beauty.GoldenRatioScore(req.Landmarks)
	if err != nil {
		if errors.Is(err, beauty.ErrNoFace) {
			respondError(w, http.StatusBadRequest, analysis.MsgNoValidFace)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ScoreResponse{Score: score.String()})
}

// FrameScoreResponse carries a brightness score on the 0-100 scale.
type FrameScoreResponse struct {
	Score float64 `json:"score"`
}

// AnalyzeFrame scores the brightness of the image uploaded as "frame".
func (h *ScoreHandler) AnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	f, err := readFormImage(r, "frame")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondBrightness(w, f)
}

// ScoreImageRequest is the body of POST /api/v1/score/image.
type ScoreImageRequest struct {
	Image string `json:"image"`
}

// ScoreImage scores the brightness of a base64 data URL image.
func (h *ScoreHandler) ScoreImage(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		respondError(w, http.StatusUnsupportedMediaType, "Expected Content-Type: application/json")
		return
	}

	var req ScoreImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "No image data provided")
		return
	}

	data, err := decodeDataURL(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := frame.Decode(data, "data-url")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid image data")
		return
	}
	h.respondBrightness(w, f)
}

func (h *ScoreHandler) respondBrightness(w http.ResponseWriter, f *frame.Frame) {
	score, err := beauty.BrightnessScore(f)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, FrameScoreResponse{Score: float64(score)})
}

// decodeDataURL strips the "data:image/...;base64," prefix and decodes the payload.
// A bare base64 string is accepted too.
func decodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		_, after, ok := strings.Cut(s, ",")
		if !ok {
			return nil, errors.New("invalid data URL")
		}
		payload = after
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("invalid base64 image data")
	}
	return data, nil
}

// ExpressionResponse is the body of POST /analyze_expression.
type ExpressionResponse struct {
	Status     string  `json:"status"`
	Expression string  `json:"expression,omitempty"`
	Emoji      string  `json:"emoji,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message"`
}

// AnalyzeExpression classifies the face in the image uploaded as "file".
// A missing face is reported with status "error" and HTTP 200.
func (h *ScoreHandler) AnalyzeExpression(w http.ResponseWriter, r *http.Request) {
	f, err := readFormImage(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.classifier.Classify(r.Context(), f)
	if err != nil {
		if errors.Is(err, expression.ErrNoFace) {
			respondJSON(w, http.StatusOK, ExpressionResponse{Status: "error", Message: analysis.ExpressionNoFace})
			return
		}
		log.Printf("Expression analysis with %s failed: %v", h.classifier.Name(), err)
		respondError(w, http.StatusBadGateway, "expression analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, ExpressionResponse{
		Status:     "success",
		Expression: result.Expression,
		Emoji:      result.Emoji,
		Confidence: result.Confidence,
		Message:    result.Message,
	})
}
