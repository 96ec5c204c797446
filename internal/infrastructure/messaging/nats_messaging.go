// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package messaging publishes service events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
)

// INatsConn is a NATS connection interface needed for the message builder.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// PublishProcessing enqueues a transcript processing run. The message is
// consumed by the processing queue subscription, possibly on another
// replica.
func (m *MessageBuilder) PublishProcessing(ctx context.Context, msg models.MeetingProcessingMessage) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling processing message into JSON", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "publishing processing run",
		"meeting_uid", msg.MeetingUID,
		"run_id", msg.RunID,
	)

	return m.sendMessage(ctx, models.MeetingProcessingSubject, messageBytes)
}
