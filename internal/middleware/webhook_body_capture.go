// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
)

// maxWebhookBodySize bounds webhook payloads; anything larger is rejected
// before signature verification.
const maxWebhookBodySize = 1 << 20

// WebhookBodyContextKey is the context key for storing raw webhook body
type WebhookBodyContextKey struct{}

// WebhookBodyCaptureMiddleware captures the raw request body for webhook
// endpoints and stores it in the request context, so the handler can verify
// the HMAC signature over the exact bytes that were sent.
func WebhookBodyCaptureMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/webhooks/") {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize+1))
				if err != nil {
					http.Error(w, "Failed to read request body", http.StatusBadRequest)
					return
				}
				_ = r.Body.Close()

				if len(body) > maxWebhookBodySize {
					http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}

				// Restore the body for the next handler
				r.Body = io.NopCloser(bytes.NewReader(body))

				ctx := context.WithValue(r.Context(), WebhookBodyContextKey{}, body)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetRawBodyFromContext extracts the raw body from the context
func GetRawBodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(WebhookBodyContextKey{}).([]byte)
	return body, ok
}
