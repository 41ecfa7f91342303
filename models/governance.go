package models

import (
	"encoding/json"
	"time"
)

// Outcome represents the three-way decision returned by the decision authority
type Outcome string

const (
	OutcomeAllow   Outcome = "allow"
	OutcomeConfirm Outcome = "confirm"
	OutcomeBlock   Outcome = "block"
)

// Valid reports whether the outcome is one of the three known states.
// Anything else coming back from the authority is treated as malformed.
func (o Outcome) Valid() bool {
	return o == OutcomeAllow || o == OutcomeConfirm || o == OutcomeBlock
}

// ScopeClass classifies the risk surface of an action
type ScopeClass string

const (
	ScopeInternal    ScopeClass = "internal"
	ScopeNetExternal ScopeClass = "net.external"
)

// Subject identifies the principal on whose behalf an action is evaluated
type Subject struct {
	UserID     string `json:"user_id"`
	OrgID      string `json:"org_id,omitempty"`
	APIKeyHash string `json:"api_key_hash,omitempty"`
}

// BudgetContext is a point-in-time snapshot of the subject's spend state.
// RemainingBudget = MonthlyLimit - CurrentSpend whenever computed locally;
// externally sourced snapshots are trusted as-is but carry FetchedAt so they
// are never assumed fresher than their fetch time.
type BudgetContext struct {
	MonthlyLimit    float64   `json:"monthly_limit"`
	CurrentSpend    float64   `json:"current_spend"`
	RemainingBudget float64   `json:"remaining_budget"`
	BudgetType      string    `json:"budget_type"` // "user" or "org"
	Subject         Subject   `json:"subject"`
	FetchedAt       time.Time `json:"fetched_at"`
	Fallback        bool      `json:"fallback,omitempty"` // true when the accounting service was unavailable
}

// PolicyConfig is an opaque per-request policy override forwarded to the
// decision authority without interpretation by the gateway.
type PolicyConfig map[string]interface{}

// ToolConfig carries tool-specific configuration for the decision authority
type ToolConfig struct {
	Scope    ScopeClass             `json:"scope,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ChatPayload is the tagged payload for chat actions
type ChatPayload struct {
	Messages []ChatMessage `json:"messages"`
	Provider string        `json:"provider"`
}

// ChatMessage represents a single message in a chat turn
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant tool"`
	Content string `json:"content" validate:"required"`
}

// ToolPayload is the tagged payload for tool actions
type ToolPayload struct {
	Tool              string                 `json:"tool"`
	Args              map[string]interface{} `json:"args"`
	ConfirmationToken string                 `json:"confirmation_token,omitempty"`
}

// GovernanceRequest is the canonical shape every governed action is
// normalized into before the decision authority sees it. ActionName and
// Scope are always present; RawText is derived plain text, never raw markup.
type GovernanceRequest struct {
	ActionName    string          `json:"tool"`
	Scope         ScopeClass      `json:"scope"`
	RawText       string          `json:"raw_text"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	CorrelationID string          `json:"corr_id"`
	PolicyConfig  PolicyConfig    `json:"policy_config,omitempty"`
	ToolConfig    *ToolConfig     `json:"tool_config,omitempty"`
	BudgetContext *BudgetContext  `json:"budget_context,omitempty"`
}

// DecisionContent carries the possibly policy-modified payload back from the
// authority. For chat actions Messages is populated; for tool actions Args.
type DecisionContent struct {
	Messages []ChatMessage          `json:"messages,omitempty"`
	Args     map[string]interface{} `json:"args,omitempty"`
}

// GovernanceDecision is the authority's verdict on a single request
type GovernanceDecision struct {
	Outcome  Outcome                `json:"decision"`
	Reasons  []string               `json:"reasons"`
	Content  *DecisionContent       `json:"content,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ConfirmationURL returns the out-of-band approval URL the authority attached
// to a confirm decision, or "" when absent.
func (d *GovernanceDecision) ConfirmationURL() string {
	if d.Metadata == nil {
		return ""
	}
	if u, ok := d.Metadata["confirmation_url"].(string); ok {
		return u
	}
	return ""
}

// ToolCall is a transient tool invocation owned by the pipeline for the
// lifetime of one request; it is never persisted.
type ToolCall struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// FailureCategory classifies why a gate result carries a synthesized block
type FailureCategory string

const (
	FailureNone                FailureCategory = ""
	FailureValidation          FailureCategory = "validation_error"
	FailureDecisionUnavailable FailureCategory = "decision_unavailable"
	FailureUnknownTool         FailureCategory = "unknown_tool"
	FailureExecutor            FailureCategory = "executor_error"
)

// GateResult is the caller-facing outcome of one governed action
type GateResult struct {
	Success         bool                   `json:"success"`
	Decision        Outcome                `json:"decision"`
	Reasons         []string               `json:"reasons"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Content         *DecisionContent       `json:"content,omitempty"`
	ConfirmationURL string                 `json:"confirmation_url,omitempty"`
	CorrelationID   string                 `json:"correlation_id"`
	Failure         FailureCategory        `json:"-"`
}
