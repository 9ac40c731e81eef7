package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ragent-ai/ragent/agent"
	"github.com/ragent-ai/ragent/internal/metrics"
	"github.com/ragent-ai/ragent/llm/tools"
	"github.com/ragent-ai/ragent/types"
	"go.uber.org/zap"
)

// AgentHandler serves agent execution, session lifecycle, and the tool
// catalog.
type AgentHandler struct {
	orchestrator *agent.Orchestrator
	metrics      *metrics.Collector
	logger       *zap.Logger
}

// ToolInfo describes one registered tool in API responses.
type ToolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Params      []tools.ParamSpec `json:"params"`
}

// NewAgentHandler creates the agent handler. The metrics collector may
// be nil.
func NewAgentHandler(orchestrator *agent.Orchestrator, collector *metrics.Collector, logger *zap.Logger) *AgentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentHandler{
		orchestrator: orchestrator,
		metrics:      collector,
		logger:       logger,
	}
}

// HandleExecute runs one agent task
// @Summary Execute an agent task
// @Description Run the tool-calling loop for one user message
// @Tags agent
// @Accept json
// @Produce json
// @Param request body agent.Request true "Task"
// @Success 200 {object} Response{data=agent.Response} "Task outcome"
// @Failure 400 {object} Response "Validation error"
// @Router /api/agent/execute [post]
func (h *AgentHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	start := time.Now()
	resp, err := h.orchestrator.Execute(r.Context(), req)
	if err != nil {
		WriteErrorFromErr(w, err, h.logger)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAgentExecution(string(resp.Status), time.Since(start))
	}

	WriteSuccess(w, resp)
}

// HandleDeleteSession clears one conversation session
// @Summary Delete a session
// @Description Drop a session and its conversation memory
// @Tags agent
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response "Session deleted"
// @Failure 404 {object} Response "Session not found"
// @Router /api/agent/sessions/{id} [delete]
func (h *AgentHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := extractSessionID(r)
	if sessionID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "session ID is required", h.logger)
		return
	}

	if !h.orchestrator.Sessions().Clear(sessionID) {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound, "session not found", h.logger)
		return
	}

	h.logger.Info("session deleted", zap.String("session_id", sessionID))
	WriteSuccess(w, map[string]any{"deleted": true, "sessionId": sessionID})
}

// HandleListTools returns the tool catalog
// @Summary List tools
// @Description Describe every registered tool and its parameters
// @Tags agent
// @Produce json
// @Success 200 {object} Response{data=[]ToolInfo} "Tool catalog"
// @Router /api/tools [get]
func (h *AgentHandler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	specs := h.orchestrator.Tools()

	result := make([]ToolInfo, 0, len(specs))
	for _, spec := range specs {
		result = append(result, ToolInfo{
			Name:        spec.Name,
			Description: spec.Description,
			Params:      spec.Params,
		})
	}

	WriteSuccess(w, result)
}

// extractSessionID pulls the session id from /api/agent/sessions/{id}.
func extractSessionID(r *http.Request) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	if last == "sessions" {
		return ""
	}
	return last
}
