// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package constants contains shared constants for the meeting webhook service.
package constants

type contextID int

const (
	// RequestIDContextID is the context key for the request ID.
	RequestIDContextID contextID = iota
)

const (
	// RequestIDHeader is the header carrying the request ID.
	RequestIDHeader = "X-Request-Id"

	// WebhookSignatureHeader is the header carrying the webhook HMAC signature.
	WebhookSignatureHeader = "X-Signature"

	// WebhookAPIKeyHeader is the header carrying the caller's API key.
	// Its presence is required; authenticity comes from the signature.
	WebhookAPIKeyHeader = "X-Api-Key"
)
