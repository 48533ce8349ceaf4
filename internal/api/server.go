// Package api maps HTTP requests onto the orchestrator and shapes responses.
package api

import (
	"context"
	"net/http"

	"github.com/particlelab/tracksim/internal/httputil"
	"github.com/particlelab/tracksim/internal/monitoring"
	"github.com/particlelab/tracksim/internal/orchestrate"
	"github.com/particlelab/tracksim/internal/schema"
)

// BothFailedMessage is the fixed sentinel clients see when the native path
// and the fallback both failed. The per-request cause goes in "details".
const BothFailedMessage = "Both native and fallback simulations failed"

// internalErrorMessage is the sentinel for failures outside the taxonomy.
const internalErrorMessage = "Internal server error"

// SimulationRunner is the slice of the orchestrator the API needs.
type SimulationRunner interface {
	Run(ctx context.Context) (schema.SimulationResult, error)
}

// Server is the HTTP surface. One route; everything else is a 404.
type Server struct {
	runner SimulationRunner
}

// NewServer creates a Server backed by the given runner.
func NewServer(runner SimulationRunner) *Server {
	return &Server{runner: runner}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/run_simulation", s.runSimulation)
	mux.HandleFunc("/", s.notFound)
	return mux
}

func (s *Server) runSimulation(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// Preflight: CORS headers only (set by middleware), empty body.
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		// Client disconnects do not cancel the pipeline; a request runs to
		// completion or to its own timeout bound.
		result, err := s.runner.Run(context.WithoutCancel(r.Context()))
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	default:
		httputil.MethodNotAllowed(w, "Allowed methods: GET, OPTIONS")
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	kind := orchestrate.KindOf(err)
	details := orchestrate.DetailOf(err)
	monitoring.Logf("api: simulation failed (%s): %s", kind, details)

	switch kind {
	case orchestrate.KindBothStrategiesFailed:
		httputil.InternalServerError(w, BothFailedMessage, details)
	default:
		httputil.InternalServerError(w, internalErrorMessage, details)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.NotFound(w, "Available endpoint: /run_simulation")
}
