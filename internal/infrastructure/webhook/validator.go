// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package webhook validates incoming webhook requests from the
// communication platform.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Validator handles validation of call webhook signatures. The platform
// signs the raw request body with HMAC-SHA256 using the shared API secret
// and sends the hex digest in the signature header alongside the API key.
type Validator struct {
	apiSecret string
}

// NewValidator creates a new webhook validator
func NewValidator(apiSecret string) *Validator {
	return &Validator{
		apiSecret: apiSecret,
	}
}

// ValidateRequest validates the webhook signature against the raw request
// body. Both headers are required, but the API key is only presence-checked:
// the signature is the authenticator, and pinning the key would reject
// deliveries mid key-rotation. A missing secret fails closed.
func (v *Validator) ValidateRequest(body []byte, signature, apiKey string) error {
	if v.apiSecret == "" {
		return fmt.Errorf("webhook api secret not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	if apiKey == "" {
		return fmt.Errorf("missing webhook api key")
	}

	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return fmt.Errorf("invalid webhook signature")
	}

	return nil
}
