package rest

import (
	"io"
	"net/http"

	"bitbucket.org/kleinnic74/mapview/logging"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LogsHandler serves the recent in-memory log lines
type LogsHandler struct {
	dump func(w io.Writer, reverse bool) error
}

func NewLogsHandler(dump func(w io.Writer, reverse bool) error) *LogsHandler {
	return &LogsHandler{dump: dump}
}

func (l *LogsHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/logs", l.serve).Methods("GET")
}

// serve writes the log lines newest first unless order=asc
func (l *LogsHandler) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := l.dump(w, r.URL.Query().Get("order") != "asc"); err != nil {
		logging.From(r.Context()).Warn("Failed to dump logs", zap.Error(err))
	}
}
