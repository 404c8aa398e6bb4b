package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/logging"
	"bitbucket.org/kleinnic74/mapview/mapview"
	"bitbucket.org/kleinnic74/mapview/render/svgview"
	"bitbucket.org/kleinnic74/mapview/runloop"
	"bitbucket.org/kleinnic74/mapview/session"
	"bitbucket.org/kleinnic74/mapview/tiles"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MapsHandler exposes map sessions over HTTP
type MapsHandler struct {
	sessions *session.Manager
	debugSVG bool
}

func NewMapsHandler(sessions *session.Manager, debugSVG bool) *MapsHandler {
	return &MapsHandler{sessions: sessions, debugSVG: debugSVG}
}

func (h *MapsHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/maps", h.open).Methods("POST")
	r.HandleFunc("/maps", h.list).Methods("GET")
	m := r.PathPrefix("/maps/{id}").Subrouter()
	m.HandleFunc("", h.get).Methods("GET")
	m.HandleFunc("", h.close).Methods("DELETE")
	m.HandleFunc("/size", h.withSession(h.resize)).Methods("PUT")
	m.HandleFunc("/target", h.withSession(h.target)).Methods("POST")
	m.HandleFunc("/props", h.withSession(h.props)).Methods("PUT")
	m.HandleFunc("/input", h.withSession(h.input)).Methods("POST")
	m.HandleFunc("/zoom/{direction:in|out}", h.withSession(h.zoom)).Methods("POST")
	m.HandleFunc("/tiles", h.withSession(h.tiles)).Methods("GET")
	m.HandleFunc("/tiles/{z}/{x}/{y}/loaded", h.withSession(h.tileLoaded)).Methods("POST")
	if h.debugSVG {
		m.HandleFunc("/tiles.svg", h.withSession(h.tilesSVG)).Methods("GET")
	}
}

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, s *session.Session)

func (h *MapsHandler) withSession(f sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions.Get(mux.Vars(r)["id"])
		if err != nil {
			respondWithSessionError(w, r, err)
			return
		}
		f(w, r, s)
	}
}

func respondWithSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		Respond(r).WithError(w, http.StatusNotFound, err)
	case errors.Is(err, runloop.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Respond(r).WithError(w, http.StatusServiceUnavailable, err)
	default:
		logging.From(r.Context()).Warn("Map session request failed", zap.Error(err))
		Respond(r).WithError(w, http.StatusInternalServerError, err)
	}
}

// respondWithSnapshot answers with the state of s after a request was applied
func respondWithSnapshot(w http.ResponseWriter, r *http.Request, s *session.Session, status int) {
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	Respond(r).WithJSON(w, status, snap)
}

func (h *MapsHandler) open(w http.ResponseWriter, r *http.Request) {
	var o session.Options
	if err := decodeBody(r, &o); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	s, err := h.sessions.Open(r.Context(), o)
	switch {
	case errors.Is(err, runloop.ErrStopped), errors.Is(err, context.Canceled):
		respondWithSessionError(w, r, err)
		return
	case err != nil:
		// invalid map config
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/maps/%s", s.ID))
	respondWithSnapshot(w, r, s, http.StatusCreated)
}

func (h *MapsHandler) list(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, &simplePayload{Data: h.sessions.IDs()})
}

func (h *MapsHandler) get(w http.ResponseWriter, r *http.Request) {
	h.withSession(func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		respondWithSnapshot(w, r, s, http.StatusOK)
	})(w, r)
}

func (h *MapsHandler) close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (h *MapsHandler) resize(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var sz size
	if err := decodeBody(r, &sz); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	h.apply(w, r, s, func(c *mapview.Controller) { c.Resize(sz.Width, sz.Height) })
}

type target struct {
	Center     geo.LatLng `json:"center"`
	Zoom       float64    `json:"zoom"`
	Pivot      *geo.Pixel `json:"pivot,omitempty"`
	Animate    *bool      `json:"animate,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty"`
}

func (h *MapsHandler) target(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var t target
	if err := decodeBody(r, &t); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	h.apply(w, r, s, func(c *mapview.Controller) {
		c.SetCenterZoomTarget(mapview.Target{
			Center:   t.Center,
			Zoom:     t.Zoom,
			Pivot:    t.Pivot,
			Animate:  t.Animate,
			Duration: time.Duration(t.DurationMs) * time.Millisecond,
		})
	})
}

func (h *MapsHandler) props(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var p mapview.Props
	if err := decodeBody(r, &p); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	var changed bool
	if err := s.Do(r.Context(), func(c *mapview.Controller) { changed = c.SetProps(p) }); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	Respond(r).WithJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *MapsHandler) input(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var evs []inputEvent
	if err := decodeBody(r, &evs); err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	now := time.Now()
	dispatch := make([]func(c *mapview.Controller), 0, len(evs))
	for _, e := range evs {
		f, err := e.dispatch(now)
		if err != nil {
			Respond(r).WithError(w, http.StatusBadRequest, err)
			return
		}
		dispatch = append(dispatch, f)
	}
	h.apply(w, r, s, func(c *mapview.Controller) {
		for _, f := range dispatch {
			f(c)
		}
	})
}

func (h *MapsHandler) zoom(w http.ResponseWriter, r *http.Request, s *session.Session) {
	in := mux.Vars(r)["direction"] == "in"
	h.apply(w, r, s, func(c *mapview.Controller) {
		if in {
			c.ZoomIn()
		} else {
			c.ZoomOut()
		}
	})
}

func (h *MapsHandler) tiles(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var ds []tiles.Descriptor
	if err := s.Do(r.Context(), func(c *mapview.Controller) { ds = c.Tiles() }); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	if ds == nil {
		ds = []tiles.Descriptor{}
	}
	Respond(r).WithJSON(w, http.StatusOK, &simplePayload{Data: ds})
}

func (h *MapsHandler) tileLoaded(w http.ResponseWriter, r *http.Request, s *session.Session) {
	vars := mux.Vars(r)
	key := fmt.Sprintf("%s/%s/%s", vars["z"], vars["x"], vars["y"])
	if err := s.Do(r.Context(), func(c *mapview.Controller) { c.TileLoaded(key) }); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MapsHandler) tilesSVG(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var buf bytes.Buffer
	if err := s.Do(r.Context(), func(c *mapview.Controller) {
		vp := c.Viewport()
		svgview.NewTileView(&buf).Write(vp.Width, vp.Height, c.Tiles(), c.Warning())
	}); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	respondWithDocument(w, "image/svg+xml", buf.Bytes())
}

// apply runs f on the session and answers with the resulting snapshot
func (h *MapsHandler) apply(w http.ResponseWriter, r *http.Request, s *session.Session, f func(c *mapview.Controller)) {
	if err := s.Do(r.Context(), f); err != nil {
		respondWithSessionError(w, r, err)
		return
	}
	respondWithSnapshot(w, r, s, http.StatusOK)
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
