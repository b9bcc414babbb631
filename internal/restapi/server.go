// Package restapi exposes a headless control surface for starting,
// inspecting and stopping a pydidas workflow run, re-expressing what the
// original's GUI "run" button and progress bar did as plain HTTP endpoints.
package restapi

import (
	"net/http"

	"github.com/rs/zerolog"
)

// RunStatus is the JSON status payload GET /runs/{id} returns.
type RunStatus struct {
	ID       string  `json:"id"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

// Runner is the control surface a run manager implements; Server only
// depends on this interface, not on any concrete worker/app wiring.
type Runner interface {
	StartRun() (runID string, err error)
	RunStatus(runID string) (RunStatus, error)
	StopRun(runID string) error
}

// Server is the REST control surface: POST /runs, GET /runs/{id},
// POST /runs/{id}/stop, with JWT bearer-token auth gating the mutating
// endpoints (start, stop).
type Server struct {
	runner Runner
	auth   *JWTAuth
	log    zerolog.Logger
	mux    *http.ServeMux
}

// NewServer builds a Server over runner, requiring a valid bearer token
// (signed with secretKey) on every endpoint that starts or stops a run.
func NewServer(runner Runner, secretKey string, log zerolog.Logger) *Server {
	s := &Server{runner: runner, auth: NewJWTAuth(secretKey), log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("POST /runs", s.auth.Require(http.HandlerFunc(s.handleStartRun)))
	s.mux.HandleFunc("GET /runs/{id}", s.handleRunStatus)
	s.mux.Handle("POST /runs/{id}/stop", s.auth.Require(http.HandlerFunc(s.handleStopRun)))
}

// Handler returns the fully wrapped http.Handler (logging, recovery, CORS).
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(s.log, loggingMiddleware(s.log, corsMiddleware(s.mux)))
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	id, err := s.runner.StartRun()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.runner.RunStatus(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.StopRun(r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}
