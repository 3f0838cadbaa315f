package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flowbase/dagctl/pkg/dsl"
	"github.com/flowbase/dagctl/pkg/scheduler"
	"github.com/flowbase/dagctl/pkg/telemetry"
)

// ExecuteResponse reports the outcome of a single RefreshTargets run.
type ExecuteResponse struct {
	Success       bool   `json:"success"`
	RunID         string `json:"run_id"`
	ExecutionTime string `json:"execution_time"`
	Error         string `json:"error,omitempty"`
}

// ValidateResponse reports whether a submitted definition document passes
// schema validation. Building it into a workflow is not attempted.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// handleExecuteWorkflow builds and runs a workflow definition submitted in
// the request body, without persisting it.
func (s *Server) handleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	def, err := dsl.Load(body)
	if err != nil {
		s.writeErrorResponse(w, "Invalid workflow definition", http.StatusBadRequest, err)
		return
	}

	s.executeDefinition(r.Context(), w, def)
}

// handleValidateWorkflow checks a submitted definition against the embedded
// schema without running it.
func (s *Server) handleValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	if _, err := dsl.Load(body); err != nil {
		s.writeJSONResponse(w, http.StatusOK, ValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	s.writeJSONResponse(w, http.StatusOK, ValidateResponse{Valid: true})
}

// executeDefinition builds def into a workflow, wires telemetry, runs it to
// completion, and writes the result. Shared by the ad hoc and by-ID execute
// endpoints.
func (s *Server) executeDefinition(ctx context.Context, w http.ResponseWriter, def *dsl.Definition) {
	wf, err := dsl.Build(def, s.schedulerConfig, s.logger.GetSlogLogger())
	if err != nil {
		s.writeErrorResponse(w, "Failed to build workflow", http.StatusBadRequest, err)
		return
	}

	wf.RegisterObserver(telemetry.NewTelemetryObserver(s.telemetryProvider))
	wf.RegisterObserver(s.healthMonitor)

	runID := uuid.New().String()
	start := time.Now()
	runErr := wf.RefreshTargets(ctx, nil, scheduler.RefreshOptions{
		RunID:         runID,
		ExitOnFailure: s.schedulerConfig.ExitOnFailure,
	})
	duration := time.Since(start)

	resp := ExecuteResponse{
		Success:       runErr == nil,
		RunID:         runID,
		ExecutionTime: duration.String(),
	}
	if runErr != nil {
		resp.Error = runErr.Error()
		s.writeJSONResponse(w, http.StatusInternalServerError, resp)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, resp)
}
