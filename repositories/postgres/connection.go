package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/governs-ai/agent-gateway/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// InitSchema initializes the gateway schema: the audit trail plus the local
// spend ledger tables.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_records (
			id UUID PRIMARY KEY,
			correlation_id VARCHAR(64) NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			org_id VARCHAR(255),
			action VARCHAR(255) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			decision VARCHAR(16) NOT NULL,
			reasons JSONB,
			failure VARCHAR(64),
			success BOOLEAN NOT NULL,
			cost DECIMAL(12, 4),
			latency_ms INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS spend_tracking (
			scope_key VARCHAR(512) NOT NULL,
			period_key VARCHAR(16) NOT NULL,
			total_cost DECIMAL(12, 4) NOT NULL DEFAULT 0,
			currency VARCHAR(8) NOT NULL DEFAULT 'USD',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope_key, period_key)
		);

		CREATE TABLE IF NOT EXISTS spend_transactions (
			id BIGSERIAL PRIMARY KEY,
			scope_key VARCHAR(512) NOT NULL,
			cost DECIMAL(12, 4) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			tool VARCHAR(255) NOT NULL,
			correlation_id VARCHAR(64) NOT NULL,
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_audit_records_correlation_id ON audit_records(correlation_id);
		CREATE INDEX IF NOT EXISTS idx_audit_records_user_id ON audit_records(user_id);
		CREATE INDEX IF NOT EXISTS idx_audit_records_created_at ON audit_records(created_at);
		CREATE INDEX IF NOT EXISTS idx_spend_transactions_scope_key ON spend_transactions(scope_key);
		CREATE INDEX IF NOT EXISTS idx_spend_transactions_correlation_id ON spend_transactions(correlation_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized")
	return nil
}
