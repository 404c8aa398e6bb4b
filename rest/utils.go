// Package rest exposes map sessions, their event stream and the process
// metrics over HTTP.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type Responder interface {
	WithJSON(http.ResponseWriter, int, interface{})
	WithError(http.ResponseWriter, int, error)
}

type responder struct {
	indent    bool
	requestID string
}

// Respond answers r in JSON, indented with ?pretty=true. Errors carry the
// request id so they can be found in the logs.
func Respond(r *http.Request) Responder {
	rid, _ := r.Context().Value(requestIDKey).(string)
	return responder{
		indent:    r.URL.Query().Get("pretty") == "true",
		requestID: rid,
	}
}

type errorPayload struct {
	Error   string `json:"error"`
	Request string `json:"request,omitempty"`
}

func (r responder) WithError(w http.ResponseWriter, status int, err error) {
	r.WithJSON(w, status, &errorPayload{Error: err.Error(), Request: r.requestID})
}

func (r responder) WithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	if r.indent {
		encoder.SetIndent("", "  ")
	}
	encoder.Encode(payload)
}

// respondWithDocument writes a rendered document that must not be cached,
// the map changes with every input
func respondWithDocument(w http.ResponseWriter, mime string, doc []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

type simplePayload struct {
	Data interface{} `json:"data"`
}
