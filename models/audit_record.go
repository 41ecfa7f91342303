package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind distinguishes the two governed surfaces
type ActionKind string

const (
	ActionKindChat ActionKind = "chat"
	ActionKindTool ActionKind = "tool"
)

// AuditRecord is one persisted entry in the governance audit trail. Every
// governed action produces exactly one record regardless of outcome, so the
// trail is a complete history of what was attempted, not only what ran.
type AuditRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CorrelationID string          `json:"correlation_id" db:"correlation_id"`
	UserID        string          `json:"user_id" db:"user_id"`
	OrgID         string          `json:"org_id,omitempty" db:"org_id"`
	Action        string          `json:"action" db:"action"`
	Kind          ActionKind      `json:"kind" db:"kind"`
	Decision      Outcome         `json:"decision" db:"decision"`
	Reasons       []string        `json:"reasons,omitempty" db:"reasons"`
	Failure       FailureCategory `json:"failure,omitempty" db:"failure"`
	Success       bool            `json:"success" db:"success"`
	Cost          *float64        `json:"cost,omitempty" db:"cost"`
	LatencyMs     int             `json:"latency_ms" db:"latency_ms"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AuditRecord model
func (AuditRecord) TableName() string {
	return "audit_records"
}

// NewAuditRecord creates a new AuditRecord instance
func NewAuditRecord(correlationID string, subject Subject, action string, kind ActionKind) *AuditRecord {
	return &AuditRecord{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		UserID:        subject.UserID,
		OrgID:         subject.OrgID,
		Action:        action,
		Kind:          kind,
		CreatedAt:     time.Now(),
	}
}

// WithDecision sets the verdict and its reasons
func (a *AuditRecord) WithDecision(decision Outcome, reasons []string) *AuditRecord {
	a.Decision = decision
	a.Reasons = reasons
	return a
}

// WithFailure marks the record with a synthesized-block category
func (a *AuditRecord) WithFailure(failure FailureCategory) *AuditRecord {
	a.Failure = failure
	return a
}

// WithOutcome sets the final dispatch result and end-to-end latency
func (a *AuditRecord) WithOutcome(success bool, latencyMs int) *AuditRecord {
	a.Success = success
	a.LatencyMs = latencyMs
	return a
}

// WithCost attaches the spend incurred by a dispatched action
func (a *AuditRecord) WithCost(cost float64) *AuditRecord {
	a.Cost = &cost
	return a
}
