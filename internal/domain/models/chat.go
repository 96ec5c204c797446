// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

// MessagingChannelType is the platform channel type for meeting chat
// channels. The channel ID equals the meeting UID.
const MessagingChannelType = "messaging"

// ChatMessage is one message from a meeting chat channel.
type ChatMessage struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// CompletionMessage is one turn of a chat completion conversation.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion conversation roles.
const (
	CompletionRoleSystem    = "system"
	CompletionRoleUser      = "user"
	CompletionRoleAssistant = "assistant"
)
