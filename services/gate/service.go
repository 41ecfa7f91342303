// Package gate implements the governance pipeline every outbound action
// passes through: normalize, attach budget context, obtain a remote verdict,
// interpret it, and dispatch only on an explicit allow. No failure anywhere
// on the decision path ever widens permissions.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services"
	"github.com/governs-ai/agent-gateway/services/budget"
	"github.com/governs-ai/agent-gateway/services/correlation"
	"github.com/governs-ai/agent-gateway/services/decision"
	"github.com/governs-ai/agent-gateway/tools"
	"go.uber.org/zap"
)

// Recorder receives one audit record per governed action. Implementations
// must not block the request path.
type Recorder interface {
	Record(rec *models.AuditRecord)
}

// CostRecorder persists the spend of dispatched payment tools
type CostRecorder interface {
	RecordCost(ctx context.Context, rec budget.SpendRecord) error
}

// Service runs the governance pipeline. One instance is constructed at
// startup and shared across requests; all collaborators are concurrency-safe.
type Service struct {
	authority decision.Authority
	budgets   budget.Fetcher
	registry  *tools.Registry
	audit     Recorder     // optional, nil disables the audit trail
	costs     CostRecorder // optional, nil disables local spend bookkeeping
	logger    *zap.Logger
}

// NewService creates a new gate Service
func NewService(
	authority decision.Authority,
	budgets budget.Fetcher,
	registry *tools.Registry,
	audit Recorder,
	costs CostRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		authority: authority,
		budgets:   budgets,
		registry:  registry,
		audit:     audit,
		costs:     costs,
		logger:    logger,
	}
}

// ProcessChat governs a chat turn. On allow the returned Content holds the
// messages the caller should forward to the model, which may have been
// modified by the authority. The gateway never calls the model itself.
func (s *Service) ProcessChat(ctx context.Context, subject models.Subject, action ChatAction) (*models.GateResult, error) {
	start := time.Now()
	corrID := correlation.NewID()

	// Budget fetch and normalization are independent; overlap them.
	budgetCh := make(chan *models.BudgetContext, 1)
	go func() { budgetCh <- s.budgets.Fetch(ctx, subject) }()

	req, err := NewChatRequest(action, corrID)
	if err != nil {
		return nil, err
	}
	req.BudgetContext = <-budgetCh

	dec, err := s.authority.Decide(ctx, req, subject.UserID)
	if err != nil {
		res := s.unavailableResult(corrID, err)
		s.record(subject, req, models.ActionKindChat, res, nil, start)
		return res, nil
	}

	res := &models.GateResult{
		Decision:      dec.Outcome,
		Reasons:       dec.Reasons,
		CorrelationID: corrID,
	}

	switch dec.Outcome {
	case models.OutcomeAllow:
		res.Success = true
		res.Content = resolvedChatContent(action, dec)
	case models.OutcomeConfirm:
		res.ConfirmationURL = dec.ConfirmationURL()
	case models.OutcomeBlock:
		// nothing to attach; the reasons carry the verdict
	}

	s.record(subject, req, models.ActionKindChat, res, nil, start)
	return res, nil
}

// ProcessTool governs and, on allow, dispatches a tool invocation.
// The decision strictly precedes dispatch: no executor runs before the
// authority has answered allow for this exact request.
func (s *Service) ProcessTool(ctx context.Context, subject models.Subject, action ToolAction) (*models.GateResult, error) {
	start := time.Now()
	corrID := correlation.NewID()

	budgetCh := make(chan *models.BudgetContext, 1)
	go func() { budgetCh <- s.budgets.Fetch(ctx, subject) }()

	req, err := NewToolRequest(action, corrID)
	if err != nil {
		return nil, err
	}
	req.BudgetContext = <-budgetCh

	dec, err := s.authority.Decide(ctx, req, subject.UserID)
	if err != nil {
		res := s.unavailableResult(corrID, err)
		s.record(subject, req, models.ActionKindTool, res, nil, start)
		return res, nil
	}

	res := &models.GateResult{
		Decision:      dec.Outcome,
		Reasons:       dec.Reasons,
		CorrelationID: corrID,
	}

	var cost *float64

	switch dec.Outcome {
	case models.OutcomeBlock:
		// blocked before dispatch; nothing ran
	case models.OutcomeConfirm:
		res.ConfirmationURL = dec.ConfirmationURL()
	case models.OutcomeAllow:
		// An approved action must not run against a dead request context.
		if ctx.Err() != nil {
			res.Reasons = []string{"request cancelled before dispatch"}
			res.Decision = models.OutcomeBlock
			res.Failure = models.FailureDecisionUnavailable
			break
		}
		cost = s.dispatch(ctx, subject, action, dec, res)
	}

	s.record(subject, req, models.ActionKindTool, res, cost, start)
	return res, nil
}

// dispatch runs the approved tool and fills in the result. It returns the
// cost incurred, if any, for audit linkage.
func (s *Service) dispatch(ctx context.Context, subject models.Subject, action ToolAction, dec *models.GovernanceDecision, res *models.GateResult) *float64 {
	exec, ok := s.registry.Get(action.Tool)
	if !ok {
		res.Failure = models.FailureUnknownTool
		res.Data = map[string]interface{}{
			"error": fmt.Sprintf("Unknown tool: %s", action.Tool),
		}
		return nil
	}

	// The authority may have rewritten the arguments; the modified set
	// replaces the original entirely.
	args := action.Args
	if dec.Content != nil && dec.Content.Args != nil {
		args = dec.Content.Args
	}

	data, err := exec.Execute(ctx, args)
	if err != nil {
		s.logger.Warn("tool execution failed",
			zap.String("tool", action.Tool),
			zap.String("corr_id", res.CorrelationID),
			zap.Error(err))
		res.Failure = models.FailureExecutor
		res.Data = map[string]interface{}{
			"error":   "Tool execution failed",
			"details": err.Error(),
		}
		return nil
	}

	res.Success = true
	res.Data = data

	if paymentTools[action.Tool] && s.costs != nil {
		if amount, ok := args["amount"].(float64); ok {
			currency, _ := args["currency"].(string)
			if currency == "" {
				currency = "USD"
			}
			if err := s.costs.RecordCost(ctx, budget.SpendRecord{
				Subject:       subject,
				Cost:          amount,
				Currency:      currency,
				Tool:          action.Tool,
				CorrelationID: res.CorrelationID,
			}); err != nil {
				s.logger.Warn("failed to record spend",
					zap.String("corr_id", res.CorrelationID),
					zap.Error(err))
			}
			return &amount
		}
	}

	return nil
}

// unavailableResult synthesizes the fail-secure block returned when the
// authority could not be consulted. The reason names the failure, never
// the internals.
func (s *Service) unavailableResult(corrID string, err error) *models.GateResult {
	msg := "decision authority unavailable"
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	}

	s.logger.Error("decision path failed, blocking action",
		zap.String("corr_id", corrID),
		zap.Error(err))

	return &models.GateResult{
		Success:       false,
		Decision:      models.OutcomeBlock,
		Reasons:       []string{fmt.Sprintf("%s: action blocked", msg)},
		Failure:       models.FailureDecisionUnavailable,
		CorrelationID: corrID,
	}
}

// resolvedChatContent returns the messages the caller should forward: the
// authority's modified set when present, otherwise the originals.
func resolvedChatContent(action ChatAction, dec *models.GovernanceDecision) *models.DecisionContent {
	if dec.Content != nil && len(dec.Content.Messages) > 0 {
		return dec.Content
	}
	return &models.DecisionContent{Messages: action.Messages}
}

func (s *Service) record(subject models.Subject, req *models.GovernanceRequest, kind models.ActionKind, res *models.GateResult, cost *float64, start time.Time) {
	if s.audit == nil {
		return
	}

	rec := models.NewAuditRecord(res.CorrelationID, subject, req.ActionName, kind).
		WithDecision(res.Decision, res.Reasons).
		WithOutcome(res.Success, int(time.Since(start).Milliseconds()))

	if res.Failure != models.FailureNone {
		rec.WithFailure(res.Failure)
	}
	if cost != nil {
		rec.WithCost(*cost)
	}

	s.audit.Record(rec)
}
