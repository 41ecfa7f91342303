package budget

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"go.uber.org/zap"
)

// Period represents the time period for spend tracking
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// SpendRecord represents a single recorded cost against a subject
type SpendRecord struct {
	Subject       models.Subject
	Cost          float64
	Currency      string
	Tool          string
	CorrelationID string
}

// SpendSummary represents locally recorded spend for a subject
type SpendSummary struct {
	DailySpend   float64 `json:"daily_spend"`
	MonthlySpend float64 `json:"monthly_spend"`
}

// Ledger records the cost of dispatched payment tools in PostgreSQL.
// This is local bookkeeping for the spend summary endpoint; the
// authoritative budget snapshot still comes from the accounting service.
type Ledger struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLedger creates a new Ledger instance
func NewLedger(db *sql.DB, logger *zap.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// RecordCost records a dispatched cost using upsert, once per period bucket,
// plus an individual transaction row for audit linkage via correlation id.
func (l *Ledger) RecordCost(ctx context.Context, rec SpendRecord) error {
	scopeKey := l.buildScopeKey(rec.Subject)
	now := time.Now()

	if err := l.upsertCost(ctx, scopeKey, l.getPeriodKey(now, PeriodDaily), rec.Cost, rec.Currency); err != nil {
		return fmt.Errorf("failed to record daily cost: %w", err)
	}

	if err := l.upsertCost(ctx, scopeKey, l.getPeriodKey(now, PeriodMonthly), rec.Cost, rec.Currency); err != nil {
		return fmt.Errorf("failed to record monthly cost: %w", err)
	}

	query := `
		INSERT INTO spend_transactions
		(scope_key, cost, currency, tool, correlation_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := l.db.ExecContext(ctx, query,
		scopeKey, rec.Cost, rec.Currency, rec.Tool, rec.CorrelationID, now); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetPeriodSpend returns the total recorded spend for a subject and period
func (l *Ledger) GetPeriodSpend(ctx context.Context, subject models.Subject, period Period, now time.Time) (float64, error) {
	scopeKey := l.buildScopeKey(subject)
	periodKey := l.getPeriodKey(now, period)

	query := `
		SELECT COALESCE(total_cost, 0)
		FROM spend_tracking
		WHERE scope_key = $1 AND period_key = $2
	`

	var totalCost float64
	err := l.db.QueryRowContext(ctx, query, scopeKey, periodKey).Scan(&totalCost)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query spend: %w", err)
	}

	return totalCost, nil
}

// GetSpendSummary returns recorded spend for the daily and monthly periods
func (l *Ledger) GetSpendSummary(ctx context.Context, subject models.Subject) (*SpendSummary, error) {
	now := time.Now()

	dailySpend, err := l.GetPeriodSpend(ctx, subject, PeriodDaily, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily spend: %w", err)
	}

	monthlySpend, err := l.GetPeriodSpend(ctx, subject, PeriodMonthly, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly spend: %w", err)
	}

	return &SpendSummary{
		DailySpend:   dailySpend,
		MonthlySpend: monthlySpend,
	}, nil
}

// upsertCost inserts or updates the cost for a period bucket
func (l *Ledger) upsertCost(ctx context.Context, scopeKey, periodKey string, cost float64, currency string) error {
	query := `
		INSERT INTO spend_tracking (scope_key, period_key, total_cost, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scope_key, period_key)
		DO UPDATE SET
			total_cost = spend_tracking.total_cost + EXCLUDED.total_cost,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := l.db.ExecContext(ctx, query, scopeKey, periodKey, cost, currency, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert cost: %w", err)
	}

	return nil
}

// buildScopeKey builds a unique key for the spend scope
func (l *Ledger) buildScopeKey(subject models.Subject) string {
	if subject.OrgID != "" {
		return fmt.Sprintf("org:%s:user:%s", subject.OrgID, subject.UserID)
	}
	return fmt.Sprintf("user:%s", subject.UserID)
}

// getPeriodKey returns a unique key for a time period
func (l *Ledger) getPeriodKey(now time.Time, period Period) string {
	switch period {
	case PeriodMonthly:
		return now.Format("2006-01")
	default:
		return now.Format("2006-01-02")
	}
}

// CleanupOldData removes spend tracking rows older than the retention window.
// Should be called periodically to keep database size manageable.
func (l *Ledger) CleanupOldData(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoffDate := time.Now().Add(-olderThan)
	cutoffPeriodKey := l.getPeriodKey(cutoffDate, PeriodDaily)

	result, err := l.db.ExecContext(ctx, `DELETE FROM spend_tracking WHERE period_key < $1`, cutoffPeriodKey)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old spend data: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	result, err = l.db.ExecContext(ctx, `DELETE FROM spend_transactions WHERE timestamp < $1`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old transactions: %w", err)
	}

	txRowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction rows affected: %w", err)
	}

	l.logger.Info("cleaned up old spend data",
		zap.Int64("tracking_rows_deleted", rowsAffected),
		zap.Int64("transaction_rows_deleted", txRowsAffected),
		zap.Time("cutoff_date", cutoffDate))

	return rowsAffected + txRowsAffected, nil
}

// StartCleanupWorker starts a background worker to periodically clean up old data
func (l *Ledger) StartCleanupWorker(ctx context.Context, interval time.Duration, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("started spend ledger cleanup worker",
		zap.Duration("interval", interval),
		zap.Duration("retention", retention))

	for {
		select {
		case <-ticker.C:
			if _, err := l.CleanupOldData(ctx, retention); err != nil {
				l.logger.Error("failed to cleanup old spend data", zap.Error(err))
			}
		case <-ctx.Done():
			l.logger.Info("stopping spend ledger cleanup worker")
			return
		}
	}
}
