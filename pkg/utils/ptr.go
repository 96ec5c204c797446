// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package utils provides small helpers shared across the service.
package utils

import "time"

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// StringValue returns the value of a string pointer, or "" when nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
