// Package statusapi exposes a tiny read-only HTTP endpoint serving the
// current run's StatSummary as JSON, for long batch runs that want to
// be polled rather than tailed (SPEC_FULL.md §3).
package statusapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/fastpasta/internal/stats"
)

// Reporter is the subset of *stats.Collector the status API depends on.
type Reporter interface {
	BuildReport() []stats.StatSummary
	HasFatal() bool
	HasErrors() bool
}

// NewRouter builds the status API's chi router.
//
// Routes:
//   - GET /healthz     - liveness probe
//   - GET /status      - current StatSummary rows as JSON
func NewRouter(reporter Reporter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Rows:     reporter.BuildReport(),
			HasFatal: reporter.HasFatal(),
			HasError: reporter.HasErrors(),
		})
	})

	return r
}

type statusResponse struct {
	Rows     []stats.StatSummary `json:"rows"`
	HasFatal bool                 `json:"has_fatal"`
	HasError bool                 `json:"has_error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
