package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kozaktomas/frushion/internal/analysis"
)

// SSESource is the interface required by streamSSEEvents to stream session events via SSE.
type SSESource interface {
	AddListener() chan analysis.Event
	RemoveListener(ch chan analysis.Event)
	State() analysis.State
	Closed() bool
}

// setupSSEConnection finds the session and sets up SSE headers.
// Returns the source, flusher, and true on success. On failure, writes an error response and returns zero values with false.
func setupSSEConnection(w http.ResponseWriter, lookup func() SSESource) (SSESource, http.Flusher, bool) {
	source := lookup()
	if source == nil {
		respondError(w, http.StatusNotFound, errNoLiveSession)
		return nil, nil, false
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return source, flusher, true
}

// streamSSEEvents streams session events until the session closes, the client disconnects,
// or the event channel closes. The current state is sent first.
func streamSSEEvents(w http.ResponseWriter, r *http.Request, lookup func() SSESource) {
	source, flusher, ok := setupSSEConnection(w, lookup)
	if !ok {
		return
	}

	closed := analysis.Event{Type: analysis.EventClosed, Message: "Session closed"}
	eventCh := source.AddListener()
	defer source.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, analysis.EventState, analysis.Event{Type: analysis.EventState, Data: source.State()})
	if source.Closed() {
		sendSSEEvent(w, flusher, analysis.EventClosed, closed)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				sendSSEEvent(w, flusher, analysis.EventClosed, closed)
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if event.Type == analysis.EventClosed {
				return
			}
			// The closed event may have been dropped while this client was slow.
			if source.Closed() {
				sendSSEEvent(w, flusher, analysis.EventClosed, closed)
				return
			}
		}
	}
}

// sendSSEEvent writes a single server-sent event.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}
