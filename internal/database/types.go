package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/skin"
)

// StoredAnalysis represents a saved analysis result
type StoredAnalysis struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	Mode       string    `json:"mode"`
	SkinTone   string    `json:"skin_tone"`
	Texture    string    `json:"texture"`
	Elasticity string    `json:"elasticity"`
	Hydration  string    `json:"hydration"`
	Expression string    `json:"expression,omitempty"`
	Emoji      string    `json:"emoji,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Score      string    `json:"score,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStoredAnalysis builds a record with a fresh ID. Any of skin and expr may be nil.
// The creation time is the skin timestamp when present, now otherwise.
func NewStoredAnalysis(sessionID, mode string, s *skin.Result, expr *expression.Result, score string) *StoredAnalysis {
	a := &StoredAnalysis{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Mode:      mode,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	if s != nil && !s.IsEmpty() {
		a.SkinTone = s.SkinTone
		a.Texture = s.Texture
		a.Elasticity = s.Elasticity
		a.Hydration = s.Hydration
		if !s.Timestamp.IsZero() {
			a.CreatedAt = s.Timestamp.UTC()
		}
	}
	if expr != nil {
		a.Expression = expr.Expression
		a.Emoji = expr.Emoji
		a.Confidence = expr.Confidence
	}
	return a
}

// HasSkin reports whether the record carries a skin analysis.
func (a *StoredAnalysis) HasSkin() bool {
	return a.SkinTone != ""
}

// SkinResult converts the record back into a skin result.
func (a *StoredAnalysis) SkinResult() skin.Result {
	return skin.Result{
		SkinTone:   a.SkinTone,
		Texture:    a.Texture,
		Elasticity: a.Elasticity,
		Hydration:  a.Hydration,
		Timestamp:  a.CreatedAt,
	}
}

// SkinResults returns the skin results of the records that have one, keeping order.
func SkinResults(analyses []StoredAnalysis) []skin.Result {
	results := make([]skin.Result, 0, len(analyses))
	for i := range analyses {
		if analyses[i].HasSkin() {
			results = append(results, analyses[i].SkinResult())
		}
	}
	return results
}
