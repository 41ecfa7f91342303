// Package repositories defines the persistence contracts for the gateway.
// Implementations live in subpackages; services depend only on these
// interfaces so storage can be swapped or disabled outright.
package repositories

import (
	"context"
	"time"

	"github.com/governs-ai/agent-gateway/models"
)

// AuditRepository persists governance audit records
type AuditRepository interface {
	// Insert writes a single audit record
	Insert(ctx context.Context, rec *models.AuditRecord) error

	// GetByCorrelationID returns all records sharing one correlation id
	GetByCorrelationID(ctx context.Context, correlationID string) ([]*models.AuditRecord, error)

	// GetByUser returns a user's records, newest first
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AuditRecord, error)

	// GetByDateRange returns records within a time window, newest first
	GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditRecord, error)
}
