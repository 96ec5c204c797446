// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/internal/pipeline"
)

// ProcessingMessageHandler consumes transcript processing messages from
// NATS and drives the transcript pipeline.
type ProcessingMessageHandler struct {
	processor *pipeline.TranscriptProcessor
	ready     func() bool
}

// NewProcessingMessageHandler creates a new ProcessingMessageHandler. The
// ready function gates readiness on the handler's backing stores.
func NewProcessingMessageHandler(processor *pipeline.TranscriptProcessor, ready func() bool) *ProcessingMessageHandler {
	return &ProcessingMessageHandler{
		processor: processor,
		ready:     ready,
	}
}

// HandlerReady implements [domain.MessageHandler].
func (h *ProcessingMessageHandler) HandlerReady() bool {
	if h.ready == nil {
		return true
	}
	return h.ready()
}

// HandleMessage implements [domain.MessageHandler].
func (h *ProcessingMessageHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	if subject != models.MeetingProcessingSubject {
		slog.WarnContext(ctx, "unknown subject")
		return
	}

	var processingMsg models.MeetingProcessingMessage
	if err := json.Unmarshal(msg.Data(), &processingMsg); err != nil {
		// A message that cannot be decoded will never decode; drop it.
		slog.ErrorContext(ctx, "failed to decode processing message", logging.ErrKey, err)
		return
	}

	if err := h.processor.Process(ctx, processingMsg); err != nil {
		slog.ErrorContext(ctx, "transcript processing run failed permanently",
			logging.ErrKey, err,
			"meeting_uid", processingMsg.MeetingUID,
			"run_id", processingMsg.RunID,
		)
		return
	}

	slog.DebugContext(ctx, "handled NATS message")
}
