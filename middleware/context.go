package middleware

import (
	"context"

	"github.com/governs-ai/agent-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"

	// SubjectKey is the context key for the resolved subject
	SubjectKey contextKey = "subject"
)

// Claims represents JWT claims extracted from the token
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	OrgID string `json:"org_id"`
	Iss   string `json:"iss"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext retrieves JWT claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds JWT claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetSubjectFromContext retrieves the resolved subject from context
func GetSubjectFromContext(ctx context.Context) models.Subject {
	if val := ctx.Value(SubjectKey); val != nil {
		if subject, ok := val.(models.Subject); ok {
			return subject
		}
	}
	return models.Subject{}
}

// WithSubject adds the resolved subject to the context
func WithSubject(ctx context.Context, subject models.Subject) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}
