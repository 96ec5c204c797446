// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

import "time"

// Agent is an automated meeting participant definition. Agents are created
// and edited by the CRUD layer; this service only reads them.
type Agent struct {
	UID          string     `json:"uid"`
	Name         string     `json:"name"`
	Instructions string     `json:"instructions"`
	UserUID      string     `json:"user_uid"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// User is a human platform user. Only consulted for speaker resolution.
type User struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
