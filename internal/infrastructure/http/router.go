package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the snapshot read API.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(correlate, recoverPanics, logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/readyz", s.Ready)

	r.Get("/assets", s.ListAssets)
	r.Get("/assets/{slug}/history", s.GetAssetHistory)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.ListSnapshots)
		r.Get("/latest", s.GetLatestSnapshot)
		r.Get("/{date}", s.GetSnapshot)
		r.Get("/{date}/quotes", s.GetSnapshotQuotes)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
