package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements repositories.AuditRepository on PostgreSQL
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

const auditColumns = `id, correlation_id, user_id, org_id, action, kind, decision,
	       reasons, failure, success, cost, latency_ms, created_at`

// Insert writes a single audit record
func (r *AuditRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	query := `
		INSERT INTO audit_records (
			id, correlation_id, user_id, org_id, action, kind, decision,
			reasons, failure, success, cost, latency_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.CorrelationID,
		rec.UserID,
		rec.OrgID,
		rec.Action,
		rec.Kind,
		rec.Decision,
		reasons,
		rec.Failure,
		rec.Success,
		rec.Cost,
		rec.LatencyMs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	r.logger.Debug("audit record inserted",
		zap.String("id", rec.ID.String()),
		zap.String("corr_id", rec.CorrelationID))
	return nil
}

// GetByCorrelationID returns all records sharing one correlation id
func (r *AuditRepository) GetByCorrelationID(ctx context.Context, correlationID string) ([]*models.AuditRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_records
		WHERE correlation_id = $1
		ORDER BY created_at DESC
	`, auditColumns)

	return r.queryRecords(ctx, query, correlationID)
}

// GetByUser returns a user's records, newest first
func (r *AuditRepository) GetByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AuditRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, auditColumns)

	return r.queryRecords(ctx, query, userID, limit, offset)
}

// GetByDateRange returns records within a time window, newest first
func (r *AuditRepository) GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM audit_records
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, auditColumns)

	return r.queryRecords(ctx, query, start, end, limit, offset)
}

// queryRecords is a helper to query multiple audit records
func (r *AuditRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*models.AuditRecord
	for rows.Next() {
		rec := &models.AuditRecord{}
		var reasons []byte
		err := rows.Scan(
			&rec.ID,
			&rec.CorrelationID,
			&rec.UserID,
			&rec.OrgID,
			&rec.Action,
			&rec.Kind,
			&rec.Decision,
			&reasons,
			&rec.Failure,
			&rec.Success,
			&rec.Cost,
			&rec.LatencyMs,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if len(reasons) > 0 {
			if err := json.Unmarshal(reasons, &rec.Reasons); err != nil {
				return nil, fmt.Errorf("failed to decode reasons: %w", err)
			}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit record rows: %w", err)
	}

	return records, nil
}
