package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/flowbase/dagctl/pkg/dsl"
	"github.com/flowbase/dagctl/pkg/storage"
	"github.com/flowbase/dagctl/pkg/task"
	"github.com/flowbase/dagctl/pkg/uri"
	"github.com/flowbase/dagctl/pkg/viz"
	"github.com/flowbase/dagctl/pkg/workflow"
)

// SaveWorkflowRequest represents the request to save a definition
type SaveWorkflowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// SaveWorkflowResponse represents the response from saving a definition
type SaveWorkflowResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoadWorkflowResponse represents the response from loading a definition
type LoadWorkflowResponse struct {
	Success    bool                 `json:"success"`
	Definition *storage.Definition  `json:"definition,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// ListWorkflowsResponse represents the response from listing definitions
type ListWorkflowsResponse struct {
	Success     bool                          `json:"success"`
	Definitions []storage.DefinitionSummary   `json:"definitions"`
	Count       int                           `json:"count"`
}

// DeleteWorkflowResponse represents the response from deleting a definition
type DeleteWorkflowResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleSaveWorkflow validates and persists a definition document.
func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read request body", http.StatusBadRequest, err)
		return
	}

	var req SaveWorkflowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeErrorResponse(w, "Failed to parse request", http.StatusBadRequest, err)
		return
	}

	if _, err := dsl.Load(req.Data); err != nil {
		s.writeJSONResponse(w, http.StatusBadRequest, SaveWorkflowResponse{
			Success: false,
			Error:   "Invalid workflow definition: " + err.Error(),
		})
		return
	}

	id, err := s.store.Save(req.Name, req.Description, req.Data)
	if err != nil {
		s.writeJSONResponse(w, http.StatusBadRequest, SaveWorkflowResponse{
			Success: false,
			Error:   "Failed to save definition: " + err.Error(),
		})
		return
	}

	s.logger.WithField("id", id).WithField("name", req.Name).Info("definition saved")

	s.writeJSONResponse(w, http.StatusCreated, SaveWorkflowResponse{
		Success: true,
		ID:      id,
		Message: "definition saved successfully",
	})
}

// handleLoadWorkflow loads a definition by ID.
func (s *Server) handleLoadWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/load/"))
	if id == "" {
		s.writeJSONResponse(w, http.StatusBadRequest, LoadWorkflowResponse{
			Success: false,
			Error:   "definition ID is required",
		})
		return
	}

	def, err := s.store.Load(id)
	if err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, LoadWorkflowResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.writeJSONResponse(w, http.StatusOK, LoadWorkflowResponse{
		Success:    true,
		Definition: def,
	})
}

// handleListWorkflows lists every stored definition.
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defs := s.store.List()

	s.writeJSONResponse(w, http.StatusOK, ListWorkflowsResponse{
		Success:     true,
		Definitions: defs,
		Count:       len(defs),
	})
}

// handleDeleteWorkflow deletes a definition by ID.
func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/delete/"))
	if id == "" {
		s.writeJSONResponse(w, http.StatusBadRequest, DeleteWorkflowResponse{
			Success: false,
			Error:   "definition ID is required",
		})
		return
	}

	if err := s.store.Delete(id); err != nil {
		s.writeJSONResponse(w, http.StatusNotFound, DeleteWorkflowResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.logger.WithField("id", id).Info("definition deleted")

	s.writeJSONResponse(w, http.StatusOK, DeleteWorkflowResponse{
		Success: true,
		Message: "definition deleted successfully",
	})
}

// handleExecuteWorkflowByID loads a stored definition and runs it.
func (s *Server) handleExecuteWorkflowByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/execute/"))
	if id == "" {
		s.writeErrorResponse(w, "definition ID is required", http.StatusBadRequest, nil)
		return
	}

	stored, err := s.store.Load(id)
	if err != nil {
		s.writeErrorResponse(w, "Failed to load definition", http.StatusNotFound, err)
		return
	}

	def, err := dsl.Load(stored.Data)
	if err != nil {
		s.writeErrorResponse(w, "Stored definition is no longer valid", http.StatusBadRequest, err)
		return
	}

	s.logger.WithField("id", id).WithField("name", stored.Name).Info("definition executed by id")
	s.executeDefinition(r.Context(), w, def)
}

// handleWorkflowGraph renders a stored definition's dependency graph as
// GraphViz DOT source.
func (s *Server) handleWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/workflow/graph/"))
	if id == "" {
		s.writeErrorResponse(w, "definition ID is required", http.StatusBadRequest, nil)
		return
	}

	stored, err := s.store.Load(id)
	if err != nil {
		s.writeErrorResponse(w, "Failed to load definition", http.StatusNotFound, err)
		return
	}

	def, err := dsl.Load(stored.Data)
	if err != nil {
		s.writeErrorResponse(w, "Stored definition is no longer valid", http.StatusBadRequest, err)
		return
	}

	wf, err := dsl.Build(def, s.schedulerConfig, s.logger.GetSlogLogger())
	if err != nil {
		s.writeErrorResponse(w, "Failed to build workflow", http.StatusBadRequest, err)
		return
	}

	dot := viz.Dot(wf.Graph(), tasksByURI(wf), viz.DotOptions{Name: stored.Name, ShortNames: r.URL.Query().Get("short") != ""})

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func tasksByURI(wf *workflow.Workflow) map[uri.URI]*task.Task {
	out := make(map[uri.URI]*task.Task)
	for _, t := range wf.Tasks() {
		out[t.URI] = t
	}
	return out
}
