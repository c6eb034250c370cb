package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// streamEvents streams run events as server-sent events. The optional
// run_id query parameter restricts the stream to one run.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.broker.Subscribe()
	defer cancel()
	runID := r.URL.Query().Get("run_id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if runID != "" && e.RunID != runID {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
