package rest

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/kleinnic74/mapview/consts"
	"bitbucket.org/kleinnic74/mapview/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func WithMiddleWares(handler http.Handler, name string) http.Handler {
	return cors(addRequestID(logRequest(handler, name)))
}

// statusRecorder remembers the status written to the embedded writer
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(data)
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps event streams working behind the recorder
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLevel logs server errors at Warn so they survive a production log level
func requestLevel(status int) zapcore.Level {
	if status >= http.StatusInternalServerError {
		return zapcore.WarnLevel
	}
	return zapcore.DebugLevel
}

func logRequest(f http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid, _ := r.Context().Value(requestIDKey).(string)
		log := logging.From(r.Context()).With(zap.String("request", rid))
		ctx := logging.Context(r.Context(), log)
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if ce := log.Named(name).Check(requestLevel(rec.status), "HTTP Request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
					zap.Int("status", rec.status))
			}
		}()
		f.ServeHTTP(rec, r.WithContext(ctx))
	})
}

type requestIDKeyType int

const requestIDKey = requestIDKeyType(0)

func addRequestID(f http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
			r.Header.Set("X-Request-ID", rid)
		}
		w.Header().Set("X-Request-ID", rid)
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		f.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cors(h http.Handler) http.Handler {
	if !consts.IsDevMode() {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Add("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			w.Header().Add("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
