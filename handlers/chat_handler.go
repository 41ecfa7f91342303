package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/governs-ai/agent-gateway/middleware"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services/gate"
	"github.com/governs-ai/agent-gateway/utils"
	"go.uber.org/zap"
)

// Gate is the governance pipeline surface the HTTP handlers depend on
type Gate interface {
	ProcessChat(ctx context.Context, subject models.Subject, action gate.ChatAction) (*models.GateResult, error)
	ProcessTool(ctx context.Context, subject models.Subject, action gate.ToolAction) (*models.GateResult, error)
}

// ChatHandler handles governed chat requests
type ChatHandler struct {
	gate   Gate
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(g Gate, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		gate:   g,
		logger: logger,
	}
}

// ChatRequest is the request body for POST /api/v1/chat
type ChatRequest struct {
	Messages     []models.ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Provider     string               `json:"provider"`
	PolicyConfig models.PolicyConfig  `json:"policy_config,omitempty"`
}

// Chat handles POST /api/v1/chat. The gateway governs the turn and, on
// allow, returns the (possibly modified) messages for the caller to forward
// to its model provider.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		handleServiceError(w, h.logger, requestID, err)
		return
	}

	subject := middleware.GetSubjectFromContext(ctx)

	result, err := h.gate.ProcessChat(ctx, subject, gate.ChatAction{
		Messages:     req.Messages,
		Provider:     req.Provider,
		PolicyConfig: req.PolicyConfig,
	})
	if err != nil {
		handleServiceError(w, h.logger, requestID, err)
		return
	}

	h.logger.Info("chat turn governed",
		zap.String("request_id", requestID),
		zap.String("corr_id", result.CorrelationID),
		zap.String("decision", string(result.Decision)))

	_ = writeGateResult(w, result)
}
