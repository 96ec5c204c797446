// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// ProcessingEventPublisher publishes transcript processing runs for
// asynchronous execution.
type ProcessingEventPublisher interface {
	PublishProcessing(ctx context.Context, msg models.MeetingProcessingMessage) error
}
