package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, 200, map[string]string{"status": "ok"})
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, 204, nil)
	require.NoError(t, err)

	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(rec *httptest.ResponseRecorder) error
		wantStatus int
		wantError  string
	}{
		{
			name: "bad request",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteBadRequest(rec, "missing field", map[string]interface{}{"field": "tool"})
			},
			wantStatus: 400,
			wantError:  "bad_request",
		},
		{
			name: "unauthorized default message",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteUnauthorized(rec, "")
			},
			wantStatus: 401,
			wantError:  "unauthorized",
		},
		{
			name: "forbidden",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteForbidden(rec, "blocked by policy")
			},
			wantStatus: 403,
			wantError:  "forbidden",
		},
		{
			name: "not found",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteNotFound(rec, "")
			},
			wantStatus: 404,
			wantError:  "not_found",
		},
		{
			name: "service unavailable",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteServiceUnavailable(rec, "authority unreachable")
			},
			wantStatus: 503,
			wantError:  "service_unavailable",
		},
		{
			name: "internal error",
			write: func(rec *httptest.ResponseRecorder) error {
				return WriteInternalServerError(rec, "")
			},
			wantStatus: 500,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, tt.write(rec))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
