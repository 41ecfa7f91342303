// Package app wires the gateway's dependency graph. Everything is
// constructed once at startup and shared across requests.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/governs-ai/agent-gateway/config"
	"github.com/governs-ai/agent-gateway/handlers"
	"github.com/governs-ai/agent-gateway/middleware"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/repositories"
	"github.com/governs-ai/agent-gateway/repositories/postgres"
	"github.com/governs-ai/agent-gateway/services/audit"
	"github.com/governs-ai/agent-gateway/services/budget"
	"github.com/governs-ai/agent-gateway/services/decision"
	"github.com/governs-ai/agent-gateway/services/gate"
	"github.com/governs-ai/agent-gateway/tools"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when no database is configured

	// Persistence
	AuditRecords repositories.AuditRepository
	AuditService *audit.Service
	Ledger       *budget.Ledger

	// Governance pipeline
	Authority decision.Authority
	Budgets   budget.Fetcher
	Registry  *tools.Registry
	Gate      *gate.Service

	// HTTP surface
	AuthMiddleware *middleware.AuthMiddleware // nil when auth is disabled
	ChatHandler    *handlers.ChatHandler
	ToolHandler    *handlers.ToolHandler
	BudgetHandler  *handlers.BudgetHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Storage is optional: without it the gateway runs stateless, with the
	// audit trail and spend ledger disabled.
	if cfg.Database.Enabled() {
		db, err := postgres.NewDB(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		deps.DB = db

		deps.AuditRecords = postgres.NewAuditRepository(db, logger)
		deps.AuditService = audit.NewService(deps.AuditRecords, logger, audit.Config{
			BufferSize:  cfg.Audit.BufferSize,
			WorkerCount: cfg.Audit.WorkerCount,
		})
		if err := deps.AuditService.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to start audit service: %w", err)
		}

		deps.Ledger = budget.NewLedger(db.DB, logger)
	} else {
		logger.Warn("no database configured, audit trail and spend ledger disabled")
	}

	deps.Authority = decision.NewClient(decision.ClientConfig{
		BaseURL:        cfg.Authority.BaseURL,
		APIKey:         cfg.Authority.APIKey,
		AttemptTimeout: cfg.Authority.AttemptTimeout,
		OverallTimeout: cfg.Authority.OverallTimeout,
		MaxRetries:     cfg.Authority.MaxRetries,
		RetryDelay:     cfg.Authority.RetryDelay,
	}, logger)

	deps.Budgets = budget.NewAccountingFetcher(budget.FetcherConfig{
		BaseURL:              cfg.Accounting.BaseURL,
		APIKey:               cfg.Accounting.APIKey,
		Timeout:              cfg.Accounting.Timeout,
		FallbackMonthlyLimit: cfg.Accounting.FallbackMonthlyLimit,
	}, logger)

	deps.Registry = tools.NewRegistry(logger)
	if err := tools.SeedDefaults(deps.Registry, logger); err != nil {
		return nil, fmt.Errorf("failed to seed tool registry: %w", err)
	}

	// Interface fields must stay nil, not typed-nil, when storage is off.
	var recorder gate.Recorder
	if deps.AuditService != nil {
		recorder = deps.AuditService
	}
	var costs gate.CostRecorder
	if deps.Ledger != nil {
		costs = deps.Ledger
	}

	deps.Gate = gate.NewService(deps.Authority, deps.Budgets, deps.Registry, recorder, costs, logger)

	if cfg.Auth.Enabled {
		deps.AuthMiddleware = middleware.NewAuthMiddleware(
			middleware.NewJWTValidator(cfg.Auth.JWTSecret), logger)
	}

	var summarizer handlers.SpendSummarizer
	if deps.Ledger != nil {
		summarizer = deps.Ledger
	}
	var pinger handlers.Pinger
	if deps.DB != nil {
		pinger = deps.DB
	}

	deps.ChatHandler = handlers.NewChatHandler(deps.Gate, logger)
	deps.ToolHandler = handlers.NewToolHandler(deps.Gate, deps.Registry, logger)
	deps.BudgetHandler = handlers.NewBudgetHandler(deps.Budgets, summarizer, logger)
	deps.HealthHandler = handlers.NewHealthHandler(pinger, logger)

	logger.Info("dependencies initialized",
		zap.Bool("database", deps.DB != nil),
		zap.Bool("auth", cfg.Auth.Enabled),
		zap.Int("tools", deps.Registry.Count()))

	return deps, nil
}

// DevSubject is the subject injected when authentication is disabled
func DevSubject() models.Subject {
	return models.Subject{UserID: "dev-user"}
}

// Close shuts the dependency graph down in reverse order
func (d *Dependencies) Close(timeout time.Duration) {
	if d.AuditService != nil {
		if err := d.AuditService.Stop(timeout); err != nil {
			d.Logger.Warn("audit service did not stop cleanly", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("database did not close cleanly", zap.Error(err))
		}
	}
}
