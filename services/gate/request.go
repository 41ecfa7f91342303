package gate

import (
	"encoding/json"
	"fmt"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/services"
)

// ChatActionName is the canonical action name for governed chat turns
const ChatActionName = "model.chat"

// ChatAction is a caller-side chat turn awaiting governance
type ChatAction struct {
	Messages     []models.ChatMessage
	Provider     string
	PolicyConfig models.PolicyConfig
	ToolConfig   *models.ToolConfig
}

// ToolAction is a caller-side tool invocation awaiting governance
type ToolAction struct {
	Tool string
	Args map[string]interface{}

	// UserUtterance, when present, replaces the serialized call as the
	// raw text so content screening inspects user intent rather than the
	// rendered arguments.
	UserUtterance string

	// ConfirmationToken carries the out-of-band approval reference when the
	// caller re-submits an action the authority previously deferred.
	ConfirmationToken string

	PolicyConfig models.PolicyConfig
	ToolConfig   *models.ToolConfig
}

// paymentTools are the financially sensitive tools whose amounts get lifted
// into dedicated metadata so the authority can apply budget rules without
// re-parsing arbitrary args.
var paymentTools = map[string]bool{
	"payment_process": true,
	"payment_refund":  true,
}

// NewChatRequest normalizes a chat turn into a governance request.
// Only the most recent user message becomes the raw text; earlier turns are
// carried in the payload but never re-screened, so a previously blocked
// message cannot poison a new decision.
func NewChatRequest(action ChatAction, corrID string) (*models.GovernanceRequest, error) {
	if len(action.Messages) == 0 {
		return nil, services.ErrEmptyMessages
	}

	rawText := ""
	for i := len(action.Messages) - 1; i >= 0; i-- {
		if action.Messages[i].Role == "user" {
			rawText = action.Messages[i].Content
			break
		}
	}

	payload, err := json.Marshal(models.ChatPayload{
		Messages: action.Messages,
		Provider: action.Provider,
	})
	if err != nil {
		return nil, services.WrapInternal("failed to encode chat payload", err)
	}

	return &models.GovernanceRequest{
		ActionName:    ChatActionName,
		Scope:         models.ScopeNetExternal,
		RawText:       rawText,
		Payload:       payload,
		Tags:          []string{"chat"},
		CorrelationID: corrID,
		PolicyConfig:  action.PolicyConfig,
		ToolConfig:    action.ToolConfig,
	}, nil
}

// NewToolRequest normalizes a tool invocation into a governance request.
// A missing tool name is rejected here, before any remote call; normalization
// never fabricates one.
func NewToolRequest(action ToolAction, corrID string) (*models.GovernanceRequest, error) {
	if action.Tool == "" {
		return nil, services.ErrMissingToolName
	}

	args := action.Args
	if args == nil {
		args = map[string]interface{}{}
	}

	rawText := action.UserUtterance
	if rawText == "" {
		argsJSON, err := json.Marshal(args)
		if err != nil {
			return nil, services.WrapInternal("failed to encode tool args", err)
		}
		rawText = fmt.Sprintf("Tool Call: %s with arguments: %s", action.Tool, argsJSON)
	}

	scope := models.ScopeNetExternal
	toolConfig := action.ToolConfig
	if toolConfig != nil && toolConfig.Scope != "" {
		scope = toolConfig.Scope
	}

	if paymentTools[action.Tool] {
		toolConfig = withPaymentMetadata(toolConfig, args)
	}

	payload, err := json.Marshal(models.ToolPayload{
		Tool:              action.Tool,
		Args:              args,
		ConfirmationToken: action.ConfirmationToken,
	})
	if err != nil {
		return nil, services.WrapInternal("failed to encode tool payload", err)
	}

	return &models.GovernanceRequest{
		ActionName:    action.Tool,
		Scope:         scope,
		RawText:       rawText,
		Payload:       payload,
		Tags:          []string{"tool"},
		CorrelationID: corrID,
		PolicyConfig:  action.PolicyConfig,
		ToolConfig:    toolConfig,
	}, nil
}

// withPaymentMetadata lifts amount/currency/description out of the args into
// the tool-config metadata block
func withPaymentMetadata(cfg *models.ToolConfig, args map[string]interface{}) *models.ToolConfig {
	amount, ok := args["amount"].(float64)
	if !ok {
		return cfg
	}

	out := &models.ToolConfig{}
	if cfg != nil {
		out.Scope = cfg.Scope
	}
	out.Metadata = make(map[string]interface{})
	if cfg != nil {
		for k, v := range cfg.Metadata {
			out.Metadata[k] = v
		}
	}

	currency, _ := args["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	description, _ := args["description"].(string)
	if description == "" {
		description = "Payment transaction"
	}

	out.Metadata["purchase_amount"] = amount
	out.Metadata["amount"] = amount
	out.Metadata["currency"] = currency
	out.Metadata["description"] = description

	return out
}
