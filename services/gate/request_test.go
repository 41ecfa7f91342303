package gate

import (
	"encoding/json"
	"testing"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatRequest(t *testing.T) {
	t.Run("last user message becomes raw text", func(t *testing.T) {
		req, err := NewChatRequest(ChatAction{
			Messages: []models.ChatMessage{
				{Role: "user", Content: "first question"},
				{Role: "assistant", Content: "an answer"},
				{Role: "user", Content: "second question"},
				{Role: "assistant", Content: "another answer"},
			},
			Provider: "openai",
		}, "corr-1")

		require.NoError(t, err)
		assert.Equal(t, "second question", req.RawText)
		assert.Equal(t, ChatActionName, req.ActionName)
		assert.Equal(t, models.ScopeNetExternal, req.Scope)
		assert.Equal(t, []string{"chat"}, req.Tags)
		assert.Equal(t, "corr-1", req.CorrelationID)

		var payload models.ChatPayload
		require.NoError(t, json.Unmarshal(req.Payload, &payload))
		assert.Len(t, payload.Messages, 4)
		assert.Equal(t, "openai", payload.Provider)
	})

	t.Run("no user message yields empty raw text", func(t *testing.T) {
		req, err := NewChatRequest(ChatAction{
			Messages: []models.ChatMessage{{Role: "system", Content: "be terse"}},
		}, "corr-2")

		require.NoError(t, err)
		assert.Empty(t, req.RawText)
	})

	t.Run("empty messages rejected", func(t *testing.T) {
		_, err := NewChatRequest(ChatAction{}, "corr-3")
		require.Error(t, err)
		assert.True(t, services.IsValidationError(err))
	})
}

func TestNewToolRequest(t *testing.T) {
	t.Run("serialized call becomes raw text", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool: "weather_current",
			Args: map[string]interface{}{"latitude": 52.52},
		}, "corr-1")

		require.NoError(t, err)
		assert.Equal(t, "weather_current", req.ActionName)
		assert.Equal(t, `Tool Call: weather_current with arguments: {"latitude":52.52}`, req.RawText)
		assert.Equal(t, []string{"tool"}, req.Tags)
		assert.Equal(t, models.ScopeNetExternal, req.Scope)
	})

	t.Run("user utterance preferred over serialized call", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool:          "weather_current",
			Args:          map[string]interface{}{"latitude": 52.52},
			UserUtterance: "What's the weather in Berlin?",
		}, "corr-2")

		require.NoError(t, err)
		assert.Equal(t, "What's the weather in Berlin?", req.RawText)
	})

	t.Run("missing tool name rejected", func(t *testing.T) {
		_, err := NewToolRequest(ToolAction{}, "corr-3")
		require.Error(t, err)
		assert.True(t, services.IsValidationError(err))
	})

	t.Run("tool config scope honored", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool:       "file_read",
			ToolConfig: &models.ToolConfig{Scope: models.ScopeInternal},
		}, "corr-4")

		require.NoError(t, err)
		assert.Equal(t, models.ScopeInternal, req.Scope)
	})

	t.Run("payment amount lifted into metadata", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool: "payment_process",
			Args: map[string]interface{}{
				"amount":      float64(500),
				"currency":    "EUR",
				"description": "Conference tickets",
			},
		}, "corr-5")

		require.NoError(t, err)
		require.NotNil(t, req.ToolConfig)
		assert.Equal(t, 500.0, req.ToolConfig.Metadata["purchase_amount"])
		assert.Equal(t, 500.0, req.ToolConfig.Metadata["amount"])
		assert.Equal(t, "EUR", req.ToolConfig.Metadata["currency"])
		assert.Equal(t, "Conference tickets", req.ToolConfig.Metadata["description"])
	})

	t.Run("payment defaults applied", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool: "payment_process",
			Args: map[string]interface{}{"amount": float64(25)},
		}, "corr-6")

		require.NoError(t, err)
		assert.Equal(t, "USD", req.ToolConfig.Metadata["currency"])
		assert.Equal(t, "Payment transaction", req.ToolConfig.Metadata["description"])
	})

	t.Run("payment without amount leaves config untouched", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool: "payment_refund",
			Args: map[string]interface{}{"transaction_id": "txn-1"},
		}, "corr-7")

		require.NoError(t, err)
		assert.Nil(t, req.ToolConfig)
	})

	t.Run("existing metadata preserved", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool: "payment_process",
			Args: map[string]interface{}{"amount": float64(10)},
			ToolConfig: &models.ToolConfig{
				Metadata: map[string]interface{}{"merchant": "acme"},
			},
		}, "corr-8")

		require.NoError(t, err)
		assert.Equal(t, "acme", req.ToolConfig.Metadata["merchant"])
		assert.Equal(t, 10.0, req.ToolConfig.Metadata["purchase_amount"])
	})

	t.Run("confirmation token carried in payload", func(t *testing.T) {
		req, err := NewToolRequest(ToolAction{
			Tool:              "email_send",
			Args:              map[string]interface{}{"to": "a@example.com"},
			ConfirmationToken: "confirm-abc",
		}, "corr-9")

		require.NoError(t, err)
		var payload models.ToolPayload
		require.NoError(t, json.Unmarshal(req.Payload, &payload))
		assert.Equal(t, "confirm-abc", payload.ConfirmationToken)
	})
}
