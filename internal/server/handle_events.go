package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEvents streams the session view as Server-Sent Events.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := a.authenticateStream(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	err := a.follow(r.Context(), code, playerID,
		func(v SessionView) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		},
		func() error {
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		},
	)
	if !streamEnded(r.Context(), err) {
		a.logger.Warn("event stream failed", "code", code, "player", playerID, "error", err)
	}
}
