package app

import (
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
)

// DebugHandler lists the registered routes and serves the pprof profiles
type DebugHandler struct{}

func (d DebugHandler) InitRoutes(router *mux.Router) {
	// mux introspection
	router.HandleFunc("/debug/mux", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/html")
		rw.WriteHeader(http.StatusOK)
		fmt.Fprintln(rw, "<html><head><title>Endpoints</title></head><body>")
		router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
			t, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, _ := route.GetMethods()
			fmt.Fprintf(rw, "<div>%v <a href=\"%s\">%s</a></div>\n", methods, t, t)
			return nil
		})
		fmt.Fprintln(rw, "</body></html>")
	}).Methods("GET")

	router.HandleFunc("/debug/pprof/", pprof.Index).Methods("GET")
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	router.Handle("/debug/pprof/heap", pprof.Handler("heap"))
}
