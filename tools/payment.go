package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentProcess is a mock payment processor. Real integrations replace the
// executor; the gate's budget metadata extraction keys off the tool name.
type PaymentProcess struct{}

// NewPaymentProcess creates the payment_process executor
func NewPaymentProcess() *PaymentProcess { return &PaymentProcess{} }

func (p *PaymentProcess) Name() string        { return "payment_process" }
func (p *PaymentProcess) Category() string    { return "payment" }
func (p *PaymentProcess) Description() string { return "Process a payment transaction" }

// Execute processes a mock payment
func (p *PaymentProcess) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	amount, ok := toFloat(args["amount"])
	if !ok || amount <= 0 {
		return map[string]interface{}{
			"error":   "Missing or invalid required parameter: amount",
			"example": `{"amount": 49.99, "currency": "USD", "description": "Subscription"}`,
		}, nil
	}

	currency, _ := args["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	description, _ := args["description"].(string)
	if description == "" {
		description = "Payment transaction"
	}

	return map[string]interface{}{
		"transaction_id": uuid.NewString(),
		"status":         "completed",
		"amount":         amount,
		"currency":       currency,
		"description":    description,
		"processed_at":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// PaymentRefund is a mock refund processor
type PaymentRefund struct{}

// NewPaymentRefund creates the payment_refund executor
func NewPaymentRefund() *PaymentRefund { return &PaymentRefund{} }

func (p *PaymentRefund) Name() string        { return "payment_refund" }
func (p *PaymentRefund) Category() string    { return "payment" }
func (p *PaymentRefund) Description() string { return "Process a refund for a transaction" }

// Execute refunds a mock transaction
func (p *PaymentRefund) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	txID, _ := args["transaction_id"].(string)
	if txID == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: transaction_id",
			"example": `{"transaction_id": "c0a80121-...", "reason": "duplicate charge"}`,
		}, nil
	}

	reason, _ := args["reason"].(string)

	return map[string]interface{}{
		"refund_id":      uuid.NewString(),
		"transaction_id": txID,
		"status":         "refunded",
		"reason":         reason,
		"processed_at":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}
