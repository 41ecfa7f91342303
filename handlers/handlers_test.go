package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/governs-ai/agent-gateway/middleware"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services/budget"
	"github.com/governs-ai/agent-gateway/services/gate"
	"github.com/governs-ai/agent-gateway/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGate struct {
	chatResult *models.GateResult
	toolResult *models.GateResult
	err        error

	lastChat *gate.ChatAction
	lastTool *gate.ToolAction
}

func (f *fakeGate) ProcessChat(ctx context.Context, subject models.Subject, action gate.ChatAction) (*models.GateResult, error) {
	f.lastChat = &action
	if f.err != nil {
		return nil, f.err
	}
	return f.chatResult, nil
}

func (f *fakeGate) ProcessTool(ctx context.Context, subject models.Subject, action gate.ToolAction) (*models.GateResult, error) {
	f.lastTool = &action
	if f.err != nil {
		return nil, f.err
	}
	return f.toolResult, nil
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(middleware.WithSubject(req.Context(), models.Subject{UserID: "user-1"}))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) *models.GateResult {
	t.Helper()
	var result models.GateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return &result
}

func TestChatHandler(t *testing.T) {
	validBody := ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hello"}},
		Provider: "openai",
	}

	t.Run("allow is 200", func(t *testing.T) {
		g := &fakeGate{chatResult: &models.GateResult{
			Success:       true,
			Decision:      models.OutcomeAllow,
			Reasons:       []string{"Request approved"},
			CorrelationID: "corr-1",
		}}
		h := NewChatHandler(g, zap.NewNop())

		rec := doJSON(t, h.Chat, http.MethodPost, "/api/v1/chat", validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		result := decodeResult(t, rec)
		assert.True(t, result.Success)
		assert.Equal(t, "corr-1", result.CorrelationID)
		require.NotNil(t, g.lastChat)
		assert.Equal(t, "openai", g.lastChat.Provider)
	})

	t.Run("block is 403", func(t *testing.T) {
		g := &fakeGate{chatResult: &models.GateResult{
			Decision: models.OutcomeBlock,
			Reasons:  []string{"Prohibited content"},
		}}
		h := NewChatHandler(g, zap.NewNop())

		rec := doJSON(t, h.Chat, http.MethodPost, "/api/v1/chat", validBody)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("confirm is 202", func(t *testing.T) {
		g := &fakeGate{chatResult: &models.GateResult{
			Decision:        models.OutcomeConfirm,
			ConfirmationURL: "https://approvals.example.com/c/1",
		}}
		h := NewChatHandler(g, zap.NewNop())

		rec := doJSON(t, h.Chat, http.MethodPost, "/api/v1/chat", validBody)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "https://approvals.example.com/c/1", decodeResult(t, rec).ConfirmationURL)
	})

	t.Run("authority outage is 503", func(t *testing.T) {
		g := &fakeGate{chatResult: &models.GateResult{
			Decision: models.OutcomeBlock,
			Failure:  models.FailureDecisionUnavailable,
			Reasons:  []string{"decision authority unreachable: action blocked"},
		}}
		h := NewChatHandler(g, zap.NewNop())

		rec := doJSON(t, h.Chat, http.MethodPost, "/api/v1/chat", validBody)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("invalid body is 400", func(t *testing.T) {
		h := NewChatHandler(&fakeGate{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("not json"))
		rec := httptest.NewRecorder()
		h.Chat(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty messages is 400", func(t *testing.T) {
		g := &fakeGate{}
		h := NewChatHandler(g, zap.NewNop())

		rec := doJSON(t, h.Chat, http.MethodPost, "/api/v1/chat", ChatRequest{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, g.lastChat)
	})
}

func TestToolHandler_Execute(t *testing.T) {
	validBody := ToolExecuteRequest{
		Tool: "weather_current",
		Args: map[string]interface{}{"latitude": 52.52, "longitude": 13.41},
	}

	t.Run("allow is 200 with data", func(t *testing.T) {
		g := &fakeGate{toolResult: &models.GateResult{
			Success:  true,
			Decision: models.OutcomeAllow,
			Data:     map[string]interface{}{"temperature": "3.5°C"},
		}}
		h := NewToolHandler(g, tools.NewRegistry(zap.NewNop()), zap.NewNop())

		rec := doJSON(t, h.Execute, http.MethodPost, "/api/v1/tools/execute", validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		result := decodeResult(t, rec)
		assert.Equal(t, "3.5°C", result.Data["temperature"])
	})

	t.Run("missing tool name is 400 before the gate runs", func(t *testing.T) {
		g := &fakeGate{}
		h := NewToolHandler(g, tools.NewRegistry(zap.NewNop()), zap.NewNop())

		rec := doJSON(t, h.Execute, http.MethodPost, "/api/v1/tools/execute", ToolExecuteRequest{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, g.lastTool)
	})

	t.Run("unknown tool is 400", func(t *testing.T) {
		g := &fakeGate{toolResult: &models.GateResult{
			Decision: models.OutcomeAllow,
			Failure:  models.FailureUnknownTool,
			Data:     map[string]interface{}{"error": "Unknown tool: teleport"},
		}}
		h := NewToolHandler(g, tools.NewRegistry(zap.NewNop()), zap.NewNop())

		rec := doJSON(t, h.Execute, http.MethodPost, "/api/v1/tools/execute",
			ToolExecuteRequest{Tool: "teleport"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("executor failure is 200 with success false", func(t *testing.T) {
		g := &fakeGate{toolResult: &models.GateResult{
			Decision: models.OutcomeAllow,
			Failure:  models.FailureExecutor,
			Data:     map[string]interface{}{"error": "Tool execution failed"},
		}}
		h := NewToolHandler(g, tools.NewRegistry(zap.NewNop()), zap.NewNop())

		rec := doJSON(t, h.Execute, http.MethodPost, "/api/v1/tools/execute", validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeResult(t, rec).Success)
	})

	t.Run("block is 403", func(t *testing.T) {
		g := &fakeGate{toolResult: &models.GateResult{
			Decision: models.OutcomeBlock,
			Reasons:  []string{"Monthly budget exceeded"},
		}}
		h := NewToolHandler(g, tools.NewRegistry(zap.NewNop()), zap.NewNop())

		rec := doJSON(t, h.Execute, http.MethodPost, "/api/v1/tools/execute", validBody)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestToolHandler_List(t *testing.T) {
	registry := tools.NewRegistry(zap.NewNop())
	require.NoError(t, tools.SeedDefaults(registry, zap.NewNop()))
	h := NewToolHandler(&fakeGate{}, registry, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ToolListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.Count)
	assert.Len(t, resp.Tools["weather"], 2)
	assert.Len(t, resp.Tools["payment"], 2)
}

type staticFetcher struct {
	ctx *models.BudgetContext
}

func (s *staticFetcher) Fetch(ctx context.Context, subject models.Subject) *models.BudgetContext {
	return s.ctx
}

type staticSummarizer struct {
	summary *budget.SpendSummary
	err     error
}

func (s *staticSummarizer) GetSpendSummary(ctx context.Context, subject models.Subject) (*budget.SpendSummary, error) {
	return s.summary, s.err
}

func TestBudgetHandler_Get(t *testing.T) {
	snapshot := &models.BudgetContext{
		MonthlyLimit:    1000,
		CurrentSpend:    120,
		RemainingBudget: 880,
		BudgetType:      "user",
		FetchedAt:       time.Now(),
	}

	t.Run("with ledger", func(t *testing.T) {
		h := NewBudgetHandler(&staticFetcher{ctx: snapshot},
			&staticSummarizer{summary: &budget.SpendSummary{DailySpend: 10, MonthlySpend: 120}},
			zap.NewNop())

		rec := doJSON(t, h.Get, http.MethodGet, "/api/v1/budget", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp BudgetResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 880.0, resp.Budget.RemainingBudget)
		require.NotNil(t, resp.LocalSpend)
		assert.Equal(t, 120.0, resp.LocalSpend.MonthlySpend)
	})

	t.Run("without ledger", func(t *testing.T) {
		h := NewBudgetHandler(&staticFetcher{ctx: snapshot}, nil, zap.NewNop())

		rec := doJSON(t, h.Get, http.MethodGet, "/api/v1/budget", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp BudgetResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Nil(t, resp.LocalSpend)
	})

	t.Run("ledger failure omits local spend", func(t *testing.T) {
		h := NewBudgetHandler(&staticFetcher{ctx: snapshot},
			&staticSummarizer{err: errors.New("db down")},
			zap.NewNop())

		rec := doJSON(t, h.Get, http.MethodGet, "/api/v1/budget", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type staticPinger struct {
	err error
}

func (s *staticPinger) HealthCheck(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		h := NewHealthHandler(nil, zap.NewNop())
		rec := httptest.NewRecorder()
		h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz without database", func(t *testing.T) {
		h := NewHealthHandler(nil, zap.NewNop())
		rec := httptest.NewRecorder()
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz with healthy database", func(t *testing.T) {
		h := NewHealthHandler(&staticPinger{}, zap.NewNop())
		rec := httptest.NewRecorder()
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz with unhealthy database", func(t *testing.T) {
		h := NewHealthHandler(&staticPinger{err: errors.New("no connection")}, zap.NewNop())
		rec := httptest.NewRecorder()
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
