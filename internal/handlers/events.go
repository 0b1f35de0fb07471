package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"finance_navigator/internal/events"
	"finance_navigator/internal/middleware"
)

// EventsHandler streams collection-change events over SSE.
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream serves one SSE connection until the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.hub.Subscribe(user.ID)
	defer h.hub.Unsubscribe(user.ID, ch)

	// Tell the client the stream is live before the first change arrives.
	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
