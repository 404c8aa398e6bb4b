package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bitbucket.org/kleinnic74/mapview/events"
	"bitbucket.org/kleinnic74/mapview/logging"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SSEHandler struct {
	events *events.Stream
}

func NewSSEHandler(stream *events.Stream) *SSEHandler {
	return &SSEHandler{
		events: stream,
	}
}

func (e *SSEHandler) InitRoutes(router *mux.Router) {
	router.HandleFunc("/eventstream", e.listen).Methods("GET").Name("/eventstream")
}

// listen streams events, optionally only those of the session given by the
// "session" query parameter
func (e *SSEHandler) listen(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Warn("HTTP Flusher not supported")
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	only := r.URL.Query().Get("session")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	e.events.Listen(r.Context(), func(event events.Event) {
		if only != "" && event.Session != only {
			return
		}
		data, err := json.Marshal(event)
		if err != nil {
			logger.Warn("Cannot encode event", zap.String("event", event.Name), zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data); err != nil {
			return
		}
		flusher.Flush()
	})
}
