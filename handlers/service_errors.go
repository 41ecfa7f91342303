package handlers

import (
	"net/http"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services"
	"github.com/governs-ai/agent-gateway/utils"
	"go.uber.org/zap"
)

// handleServiceError maps domain errors to HTTP responses
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, requestID string, err error) {
	switch {
	case utils.IsValidationError(err):
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		_ = utils.WriteBadRequest(w, err.Error(), details)
	case services.IsValidationError(err):
		logger.Debug("validation error",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, err.Error(), services.GetErrorDetails(err))
	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, "Unauthorized")
	case services.IsUnknownToolError(err):
		_ = utils.WriteBadRequest(w, err.Error(), nil)
	default:
		logger.Error("unexpected service error",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Internal server error")
	}
}

// writeGateResult maps a gate result to its HTTP status. Authority blocks are
// 403; blocks synthesized because the authority was unreachable are 503 so
// callers can distinguish policy from outage. Confirm is 202: the action is
// accepted but suspended until approved out of band.
func writeGateResult(w http.ResponseWriter, result *models.GateResult) error {
	status := http.StatusOK

	switch {
	case result.Failure == models.FailureDecisionUnavailable:
		status = http.StatusServiceUnavailable
	case result.Decision == models.OutcomeBlock:
		status = http.StatusForbidden
	case result.Decision == models.OutcomeConfirm:
		status = http.StatusAccepted
	}

	return utils.WriteJSON(w, status, result)
}
