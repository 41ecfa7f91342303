package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/governs-ai/agent-gateway/middleware"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services/gate"
	"github.com/governs-ai/agent-gateway/tools"
	"github.com/governs-ai/agent-gateway/utils"
	"go.uber.org/zap"
)

// ToolHandler handles governed tool execution and tool discovery
type ToolHandler struct {
	gate     Gate
	registry *tools.Registry
	logger   *zap.Logger
}

// NewToolHandler creates a new ToolHandler
func NewToolHandler(g Gate, registry *tools.Registry, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		gate:     g,
		registry: registry,
		logger:   logger,
	}
}

// ToolExecuteRequest is the request body for POST /api/v1/tools/execute
type ToolExecuteRequest struct {
	Tool              string                 `json:"tool" validate:"required"`
	Args              map[string]interface{} `json:"args"`
	UserUtterance     string                 `json:"user_utterance,omitempty"`
	ConfirmationToken string                 `json:"confirmation_token,omitempty"`
	PolicyConfig      models.PolicyConfig    `json:"policy_config,omitempty"`
	ToolConfig        *models.ToolConfig     `json:"tool_config,omitempty"`
}

// Execute handles POST /api/v1/tools/execute
func (h *ToolHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ToolExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		handleServiceError(w, h.logger, requestID, err)
		return
	}

	subject := middleware.GetSubjectFromContext(ctx)

	result, err := h.gate.ProcessTool(ctx, subject, gate.ToolAction{
		Tool:              req.Tool,
		Args:              req.Args,
		UserUtterance:     req.UserUtterance,
		ConfirmationToken: req.ConfirmationToken,
		PolicyConfig:      req.PolicyConfig,
		ToolConfig:        req.ToolConfig,
	})
	if err != nil {
		handleServiceError(w, h.logger, requestID, err)
		return
	}

	h.logger.Info("tool call governed",
		zap.String("request_id", requestID),
		zap.String("corr_id", result.CorrelationID),
		zap.String("tool", req.Tool),
		zap.String("decision", string(result.Decision)),
		zap.Bool("success", result.Success))

	if result.Failure == models.FailureUnknownTool {
		_ = utils.WriteJSON(w, http.StatusBadRequest, result)
		return
	}

	_ = writeGateResult(w, result)
}

// ToolListEntry describes one registered tool
type ToolListEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolListResponse is the response body for GET /api/v1/tools
type ToolListResponse struct {
	Tools map[string][]ToolListEntry `json:"tools"`
	Count int                        `json:"count"`
}

// List handles GET /api/v1/tools, grouping tools by category
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.List()

	grouped := make(map[string][]ToolListEntry)
	for _, info := range infos {
		grouped[info.Category] = append(grouped[info.Category], ToolListEntry{
			Name:        info.Name,
			Description: info.Description,
		})
	}

	_ = utils.WriteJSON(w, http.StatusOK, ToolListResponse{
		Tools: grouped,
		Count: len(infos),
	})
}
