package ui

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BurningYang107/sensor-data-viewer/internal/session"
)

// NewOpsRouter serves the operational surface: liveness and pprof. It runs on
// its own port so the profiler is never exposed alongside the dashboard.
func NewOpsRouter(store *session.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, store.Len())
	})

	r.Mount("/debug", middleware.Profiler())

	return r
}
