// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// WebhookValidator authenticates incoming webhook requests from the
// communication platform.
type WebhookValidator interface {
	// ValidateRequest checks the request signature against the raw body.
	// Both headers are required; the API key is presence-checked only.
	ValidateRequest(body []byte, signature, apiKey string) error
}

// CallProvider controls live call sessions on the communication platform.
type CallProvider interface {
	// ConnectAgent joins the meeting's agent to the live call session.
	ConnectAgent(ctx context.Context, meetingUID string, agent *models.Agent) error

	// EndCall terminates the call session for the meeting.
	EndCall(ctx context.Context, meetingUID string) error
}

// ChatProvider interacts with meeting chat channels on the communication
// platform.
type ChatProvider interface {
	// UpsertUser creates or updates the platform user that messages are
	// sent as.
	UpsertUser(ctx context.Context, userID, name string) error

	// SendMessage posts a message to the channel as the given user.
	SendMessage(ctx context.Context, channelID, userID, text string) error

	// ChannelHistory returns the most recent channel messages, newest last.
	ChannelHistory(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error)
}

// CompletionService generates chat completions from a language model.
type CompletionService interface {
	// Complete returns the model's reply for the given conversation.
	Complete(ctx context.Context, messages []models.CompletionMessage) (string, error)
}

// TranscriptFetcher retrieves raw transcript content from storage URLs.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, url string) ([]byte, error)
}

// TranscriptSummarizer generates a meeting summary from a speaker-annotated
// transcript.
type TranscriptSummarizer interface {
	SummarizeTranscript(ctx context.Context, items []models.SpeakerTranscriptItem) (string, error)
}
