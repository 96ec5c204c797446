// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/converge-ai/converge-meeting-service/pkg/constants"
)

func TestWebhookBodyCaptureMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		body          string
		expectCapture bool
	}{
		{
			name:          "captures call webhook request body",
			path:          "/webhooks/call",
			body:          `{"type": "call.session.started"}`,
			expectCapture: true,
		},
		{
			name:          "does not capture non-webhook request body",
			path:          "/api/meetings",
			body:          `{"title": "Test Meeting"}`,
			expectCapture: false,
		},
		{
			name:          "handles empty webhook body",
			path:          "/webhooks/call",
			body:          "",
			expectCapture: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bodyFromContext []byte
			var contextHasBody bool
			var rereadBody []byte

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				bodyFromContext, contextHasBody = GetRawBodyFromContext(r.Context())

				// The body must still be readable downstream.
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				rereadBody = body

				w.WriteHeader(http.StatusOK)
			})

			wrapped := WebhookBodyCaptureMiddleware()(handler)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.body, string(rereadBody))
			assert.Equal(t, tt.expectCapture, contextHasBody)
			if tt.expectCapture {
				assert.Equal(t, tt.body, string(bodyFromContext))
			}
		})
	}
}

func TestWebhookBodyCaptureMiddlewareRejectsOversizedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for oversized bodies")
	})
	wrapped := WebhookBodyCaptureMiddleware()(handler)

	body := strings.NewReader(strings.Repeat("x", maxWebhookBodySize+1))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/call", body)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		incomingID string
	}{
		{name: "keeps caller request id", incomingID: "caller-supplied-id"},
		{name: "generates request id when missing", incomingID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idFromContext string
			var contextHasID bool

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				idFromContext, contextHasID = RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			wrapped := RequestIDMiddleware()(handler)

			req := httptest.NewRequest(http.MethodGet, "/livez", nil)
			if tt.incomingID != "" {
				req.Header.Set(constants.RequestIDHeader, tt.incomingID)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			require.True(t, contextHasID)
			assert.NotEmpty(t, idFromContext)
			if tt.incomingID != "" {
				assert.Equal(t, tt.incomingID, idFromContext)
			}
			assert.Equal(t, idFromContext, rec.Header().Get(constants.RequestIDHeader))
		})
	}
}

func TestRequestLoggerMiddlewareCapturesStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	wrapped := RequestLoggerMiddleware()(handler)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/call", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
