package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
)

// stateEvent is the SSE event name for document changes.
const stateEvent = "state"

// events streams notifications and the document after every change as
// server-sent events until the client disconnects or the hub closes. A
// client that falls behind only receives the newest document.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	states := make(chan flow.State, 1)
	unsubscribe := s.editor.Subscribe(func(st flow.State) { offerLatest(states, st) })
	defer unsubscribe()

	ch, cancel := s.hub.Subscribe(64)
	defer cancel()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	send := func(event string, v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			s.logger.Warn("encode event", "event", event, "err", err)
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	for {
		select {
		case n, ok := <-ch:
			if !ok || !send(string(n.Kind), n) {
				return
			}
		case st := <-states:
			if !send(stateEvent, graph.FromState(st)) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// offerLatest puts st into ch, dropping an older state the reader has not
// taken yet. Deliveries from one editor never overlap, so ch has a single
// writer.
func offerLatest(ch chan flow.State, st flow.State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
