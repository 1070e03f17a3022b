package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/media"
	"github.com/kozaktomas/frushion/internal/skin"
)

func sampleAnalysis(id, tone string, at time.Time) database.StoredAnalysis {
	return database.StoredAnalysis{
		ID:         id,
		Mode:       "skin",
		SkinTone:   tone,
		Texture:    "Smooth",
		Elasticity: "Moderate",
		Hydration:  "Good",
		CreatedAt:  at,
	}
}

func TestAnalysesHandler_NoBackend(t *testing.T) {
	database.ResetBackend()
	h := NewAnalysesHandler(nil)

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, database.ErrNotInitialized.Error())
}

func TestAnalysesHandler_List(t *testing.T) {
	store := useMockStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.AddAnalysis(sampleAnalysis("a1", skin.ToneFair, base))
	store.AddAnalysis(sampleAnalysis("a2", skin.ToneTan, base.Add(time.Minute)))
	store.AddAnalysis(sampleAnalysis("a3", skin.ToneDeep, base.Add(2*time.Minute)))
	h := NewAnalysesHandler(nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{"default limit", "", http.StatusOK, []string{"a3", "a2", "a1"}},
		{"limit", "?limit=2", http.StatusOK, []string{"a3", "a2"}},
		{"zero limit", "?limit=0", http.StatusBadRequest, nil},
		{"invalid limit", "?limit=many", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses"+tt.query, nil))

			assertStatusCode(t, recorder, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				assertJSONError(t, recorder, "limit must be a positive integer")
				return
			}
			var got []database.StoredAnalysis
			parseJSONResponse(t, recorder, &got)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d analyses, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestAnalysesHandler_ListEmptyAndFailing(t *testing.T) {
	store := useMockStore(t)
	h := NewAnalysesHandler(nil)

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	assertStatusCode(t, recorder, http.StatusOK)
	if body := strings.TrimSpace(recorder.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}

	store.ListError = errors.New("connection reset")
	recorder = httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to list analyses")
}

func TestAnalysesHandler_GetAndDelete(t *testing.T) {
	store := useMockStore(t)
	store.AddAnalysis(sampleAnalysis("a1", skin.ToneMedium, time.Now().UTC()))
	h := NewAnalysesHandler(nil)

	// Get existing
	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/analyses/a1", nil), map[string]string{"id": "a1"})
	h.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)
	var got database.StoredAnalysis
	parseJSONResponse(t, recorder, &got)
	if got.SkinTone != skin.ToneMedium {
		t.Errorf("expected tone Medium, got %s", got.SkinTone)
	}

	// Get missing
	recorder = httptest.NewRecorder()
	req = requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/analyses/nope", nil), map[string]string{"id": "nope"})
	h.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "analysis not found")

	// Delete existing
	recorder = httptest.NewRecorder()
	req = requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/analyses/a1", nil), map[string]string{"id": "a1"})
	h.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)
	var deleted map[string]bool
	parseJSONResponse(t, recorder, &deleted)
	if !deleted["deleted"] {
		t.Error("expected deleted true")
	}

	// Delete again
	recorder = httptest.NewRecorder()
	h.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)

	// Backend failure
	store.GetError = errors.New("timeout")
	recorder = httptest.NewRecorder()
	h.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestAnalysesHandler_Save(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		wantMode   string
	}{
		{
			name:       "skin result",
			body:       `{"skin":{"skin_tone":"Light","texture":"Dry","elasticity":"Low","hydration":"Low","timestamp":"2024-05-01T10:00:00Z"}}`,
			wantStatus: http.StatusCreated,
			wantMode:   "skin",
		},
		{
			name:       "score result",
			body:       `{"mode":"score","score":"61.80/100"}`,
			wantStatus: http.StatusCreated,
			wantMode:   "score",
		},
		{
			name:       "unknown mode",
			body:       `{"mode":"aura","score":"1.00/100"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  `unknown analysis mode "aura"`,
		},
		{
			name:       "nothing to save",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "no analysis to save",
		},
		{
			name:       "placeholder skin",
			body:       `{"skin":{"skin_tone":"No analysis yet"}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "no analysis to save",
		},
		{
			name:       "invalid JSON",
			body:       `{"skin":`,
			wantStatus: http.StatusBadRequest,
			wantError:  errInvalidRequestBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := useMockStore(t)
			h := NewAnalysesHandler(NewLiveManager())

			recorder := httptest.NewRecorder()
			h.Save(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(tt.body)))

			assertStatusCode(t, recorder, tt.wantStatus)
			if tt.wantError != "" {
				assertJSONError(t, recorder, tt.wantError)
				if len(store.Saved()) != 0 {
					t.Error("expected nothing saved")
				}
				return
			}
			var got database.StoredAnalysis
			parseJSONResponse(t, recorder, &got)
			if got.ID == "" || got.Mode != tt.wantMode {
				t.Errorf("unexpected saved record %+v", got)
			}
			if len(store.Saved()) != 1 {
				t.Errorf("expected 1 saved analysis, got %d", len(store.Saved()))
			}
		})
	}
}

func TestAnalysesHandler_SaveFromLive(t *testing.T) {
	store := useMockStore(t)
	live := NewLiveHandler(testConfig(), NewLiveManager())
	live.newSource = func() (media.Source, error) { return media.NewStaticSource(darkFrame()), nil }
	defer live.manager.Stop()
	h := NewAnalysesHandler(live.manager)

	assertStatusCode(t, startLive(t, live, LiveStartRequest{Mode: "skin", Trigger: "manual"}), http.StatusCreated)

	// Nothing rendered yet
	recorder := httptest.NewRecorder()
	h.Save(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))
	assertStatusCode(t, recorder, http.StatusBadRequest)

	recorder = httptest.NewRecorder()
	live.Trigger(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/live/trigger", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	h.Save(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))
	assertStatusCode(t, recorder, http.StatusCreated)

	saved := store.Saved()
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved analysis, got %d", len(saved))
	}
	if saved[0].SkinTone != skin.ToneDeep || saved[0].SessionID != live.manager.Current().ID() {
		t.Errorf("unexpected saved analysis %+v", saved[0])
	}
}

func TestAnalysesHandler_SaveFailure(t *testing.T) {
	store := useMockStore(t)
	store.SaveError = errors.New("disk full")
	h := NewAnalysesHandler(nil)

	recorder := httptest.NewRecorder()
	h.Save(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(`{"mode":"brightness","score":"20.00/100"}`)))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder, "failed to save analysis")
}

func TestAnalysesHandler_Export(t *testing.T) {
	t.Run("no skin analysis", func(t *testing.T) {
		store := useMockStore(t)
		store.AddAnalysis(database.StoredAnalysis{ID: "s1", Mode: "score", Score: "50.00/100", CreatedAt: time.Now()})
		h := NewAnalysesHandler(nil)

		recorder := httptest.NewRecorder()
		h.Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/export", nil))
		assertStatusCode(t, recorder, http.StatusNotFound)
		assertJSONError(t, recorder, "no skin analysis to export")
	})

	store := useMockStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.AddAnalysis(sampleAnalysis("a1", skin.ToneFair, base))
	store.AddAnalysis(sampleAnalysis("a2", skin.ToneTan, base.Add(time.Minute)))
	h := NewAnalysesHandler(nil)

	t.Run("latest", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		h.Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/export", nil))

		assertStatusCode(t, recorder, http.StatusOK)
		assertContentType(t, recorder, "text/csv; charset=utf-8")
		if cd := recorder.Header().Get("Content-Disposition"); cd != `attachment; filename="analysis_report.csv"` {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}
		want := "Skin Tone,Texture,Elasticity,Hydration,Timestamp\n" +
			"Tan,Smooth,Moderate,Good,2024-05-01T12:01:00.000Z\n"
		if recorder.Body.String() != want {
			t.Errorf("unexpected CSV:\n%s", recorder.Body.String())
		}
	})

	t.Run("all", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		h.Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/export?all=true", nil))

		assertStatusCode(t, recorder, http.StatusOK)
		lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[1], "Tan,") || !strings.HasPrefix(lines[2], "Fair,") {
			t.Errorf("expected newest first, got %v", lines[1:])
		}
	})

	t.Run("count failure", func(t *testing.T) {
		store.CountError = errors.New("timeout")
		defer func() { store.CountError = nil }()

		recorder := httptest.NewRecorder()
		h.Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/export", nil))
		assertStatusCode(t, recorder, http.StatusInternalServerError)
	})
}
