package handlers

import (
	"context"
	"net/http"

	"github.com/governs-ai/agent-gateway/middleware"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services/budget"
	"github.com/governs-ai/agent-gateway/utils"
	"go.uber.org/zap"
)

// SpendSummarizer exposes the locally recorded spend, when a ledger is
// configured
type SpendSummarizer interface {
	GetSpendSummary(ctx context.Context, subject models.Subject) (*budget.SpendSummary, error)
}

// BudgetHandler serves the caller's budget snapshot
type BudgetHandler struct {
	fetcher budget.Fetcher
	ledger  SpendSummarizer // optional, nil when no database is configured
	logger  *zap.Logger
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(fetcher budget.Fetcher, ledger SpendSummarizer, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		fetcher: fetcher,
		ledger:  ledger,
		logger:  logger,
	}
}

// BudgetResponse is the response body for GET /api/v1/budget
type BudgetResponse struct {
	Budget     *models.BudgetContext `json:"budget"`
	LocalSpend *budget.SpendSummary  `json:"local_spend,omitempty"`
}

// Get handles GET /api/v1/budget. The snapshot degrades to the fallback when
// the accounting service is down, marked as such; a ledger failure only
// omits the local figures.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := middleware.GetSubjectFromContext(ctx)

	resp := BudgetResponse{
		Budget: h.fetcher.Fetch(ctx, subject),
	}

	if h.ledger != nil {
		summary, err := h.ledger.GetSpendSummary(ctx, subject)
		if err != nil {
			h.logger.Warn("failed to load local spend summary",
				zap.String("user_id", subject.UserID),
				zap.Error(err))
		} else {
			resp.LocalSpend = summary
		}
	}

	_ = utils.WriteJSON(w, http.StatusOK, resp)
}
