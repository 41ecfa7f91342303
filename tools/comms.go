package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmailSend is a mock outbound email tool
type EmailSend struct{}

// NewEmailSend creates the email_send executor
func NewEmailSend() *EmailSend { return &EmailSend{} }

func (e *EmailSend) Name() string        { return "email_send" }
func (e *EmailSend) Category() string    { return "email" }
func (e *EmailSend) Description() string { return "Send an email message" }

// Execute sends a mock email
func (e *EmailSend) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	to, _ := args["to"].(string)
	subject, _ := args["subject"].(string)
	if to == "" || subject == "" {
		return map[string]interface{}{
			"error":   "Missing required parameters: to and subject are required",
			"example": `{"to": "a@example.com", "subject": "Hi", "body": "..."}`,
		}, nil
	}

	return map[string]interface{}{
		"message_id": uuid.NewString(),
		"to":         to,
		"subject":    subject,
		"status":     "sent",
		"sent_at":    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// CalendarCreateEvent is a mock calendar tool
type CalendarCreateEvent struct{}

// NewCalendarCreateEvent creates the calendar_create_event executor
func NewCalendarCreateEvent() *CalendarCreateEvent { return &CalendarCreateEvent{} }

func (c *CalendarCreateEvent) Name() string        { return "calendar_create_event" }
func (c *CalendarCreateEvent) Category() string    { return "calendar" }
func (c *CalendarCreateEvent) Description() string { return "Create a calendar event" }

// Execute creates a mock calendar event
func (c *CalendarCreateEvent) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	title, _ := args["title"].(string)
	start, _ := args["start"].(string)
	if title == "" || start == "" {
		return map[string]interface{}{
			"error":   "Missing required parameters: title and start are required",
			"example": `{"title": "Standup", "start": "2025-01-06T09:00:00Z", "duration_minutes": 15}`,
		}, nil
	}

	duration := 30.0
	if d, ok := toFloat(args["duration_minutes"]); ok && d > 0 {
		duration = d
	}

	return map[string]interface{}{
		"event_id":         uuid.NewString(),
		"title":            title,
		"start":            start,
		"duration_minutes": duration,
		"status":           "confirmed",
	}, nil
}
