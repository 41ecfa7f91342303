// Package decision implements the client side of the decision authority
// contract: every governance request is evaluated remotely, and any failure
// to obtain a verdict is surfaced as an error the pipeline maps to a block.
package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services"
	"go.uber.org/zap"
)

// Authority evaluates a governance request and returns a verdict.
// Implementations must be safe for concurrent use; the gateway constructs
// one handle at startup and shares it across requests.
type Authority interface {
	Decide(ctx context.Context, req *models.GovernanceRequest, subjectID string) (*models.GovernanceDecision, error)
}

// ClientConfig holds configuration for the decision authority HTTP client
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	AttemptTimeout time.Duration // per-attempt HTTP timeout
	OverallTimeout time.Duration // deadline for the whole Decide call, retries included
	MaxRetries     int           // retries after the first attempt
	RetryDelay     time.Duration // base delay, doubled per retry
}

// DefaultClientConfig returns the default client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		AttemptTimeout: 10 * time.Second,
		OverallTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Client is the HTTP transport for the decision authority. This is the single
// versioned transport the gateway supports; there is no per-call probing of
// alternate SDK surfaces.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new decision authority client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	defaults := DefaultClientConfig()
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaults.AttemptTimeout
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = defaults.OverallTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.AttemptTimeout},
		logger:     logger,
	}
}

// Decide sends the governance request to the authority and returns its
// verdict. Retries are bounded and idempotent: the correlation id is constant
// across attempts, so the authority re-evaluates the same action. Any failure
// after the retry budget is exhausted returns a decision_unavailable error;
// the caller must map that to a block, never to permission.
func (c *Client) Decide(ctx context.Context, req *models.GovernanceRequest, subjectID string) (*models.GovernanceDecision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeDecisionUnavailable,
			"failed to encode governance request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.OverallTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, services.WrapError(services.ErrorTypeDecisionUnavailable,
					"decision authority timed out", ctx.Err())
			case <-time.After(delay):
			}
			c.logger.Debug("retrying decision call",
				zap.String("corr_id", req.CorrelationID),
				zap.Int("attempt", attempt))
		}

		decision, retryable, err := c.attempt(ctx, body, req.CorrelationID, subjectID)
		if err == nil {
			return decision, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	c.logger.Warn("decision authority unreachable after retries",
		zap.String("corr_id", req.CorrelationID),
		zap.Int("max_retries", c.config.MaxRetries),
		zap.Error(lastErr))
	return nil, lastErr
}

// attempt performs one HTTP exchange. The second return value reports whether
// the failure is worth retrying (transport errors and 5xx responses are,
// malformed bodies and 4xx responses are not).
func (c *Client) attempt(ctx context.Context, body []byte, corrID, subjectID string) (*models.GovernanceDecision, bool, error) {
	url := c.config.BaseURL + "/v1/precheck"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, services.WrapError(services.ErrorTypeDecisionUnavailable,
			"failed to build decision request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Correlation-ID", corrID)
	httpReq.Header.Set("X-User-ID", subjectID)
	if c.config.APIKey != "" {
		httpReq.Header.Set("X-API-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, services.WrapError(services.ErrorTypeDecisionUnavailable,
				"decision authority timed out", ctx.Err())
		}
		return nil, true, services.WrapError(services.ErrorTypeDecisionUnavailable,
			"decision authority connection failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, services.WrapError(services.ErrorTypeDecisionUnavailable,
			fmt.Sprintf("decision authority returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, services.WrapError(services.ErrorTypeDecisionUnavailable,
			fmt.Sprintf("decision authority rejected request with status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, services.WrapError(services.ErrorTypeDecisionUnavailable,
			"failed to read decision response", err)
	}

	var decision models.GovernanceDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		return nil, false, services.WrapError(services.ErrorTypeDecisionUnavailable,
			"decision authority returned a malformed response", err)
	}
	if !decision.Outcome.Valid() {
		return nil, false, services.WrapError(services.ErrorTypeDecisionUnavailable,
			fmt.Sprintf("decision authority returned unknown outcome %q", decision.Outcome), nil)
	}

	return &decision, false, nil
}
