// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package handlers contains the inbound edges of the service: the HTTP
// webhook receiver and the NATS message handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/internal/middleware"
	"github.com/converge-ai/converge-meeting-service/internal/service"
	"github.com/converge-ai/converge-meeting-service/pkg/constants"
)

// CallWebhookHandler receives call platform webhook events over HTTP,
// verifies their signature, and routes them to the lifecycle and chat
// responder services.
type CallWebhookHandler struct {
	lifecycleService *service.MeetingLifecycleService
	chatResponder    *service.ChatResponderService
	webhookValidator domain.WebhookValidator
}

// NewCallWebhookHandler creates a new CallWebhookHandler.
func NewCallWebhookHandler(
	lifecycleService *service.MeetingLifecycleService,
	chatResponder *service.ChatResponderService,
	webhookValidator domain.WebhookValidator,
) *CallWebhookHandler {
	return &CallWebhookHandler{
		lifecycleService: lifecycleService,
		chatResponder:    chatResponder,
		webhookValidator: webhookValidator,
	}
}

// HandlerReady reports whether the handler's services are ready.
func (h *CallWebhookHandler) HandlerReady() bool {
	return h.lifecycleService.ServiceReady() && h.chatResponder.ServiceReady()
}

// HandleWebhook is the HTTP entry point for POST /webhooks/call.
func (h *CallWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		slog.ErrorContext(ctx, "webhook raw body missing from context: body capture middleware not mounted")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	signature := r.Header.Get(constants.WebhookSignatureHeader)
	apiKey := r.Header.Get(constants.WebhookAPIKeyHeader)
	if err := h.webhookValidator.ValidateRequest(body, signature, apiKey); err != nil {
		slog.WarnContext(ctx, "webhook signature validation failed", logging.ErrKey, err)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	// Signature is verified before any parsing: a malformed body with a
	// valid signature is the sender's bug, an unverifiable one is an attack.
	var event models.CallWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.WarnContext(ctx, "failed to decode webhook event", logging.ErrKey, err)
		writeError(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", event.EventType))

	eventHandlers := map[string]func(ctx context.Context, event models.CallWebhookEvent) error{
		models.EventCallSessionStarted:         h.handleSessionStarted,
		models.EventCallSessionParticipantLeft: h.handleParticipantLeft,
		models.EventCallSessionEnded:           h.handleSessionEnded,
		models.EventCallTranscriptionReady:     h.handleTranscriptionReady,
		models.EventCallRecordingReady:         h.handleRecordingReady,
		models.EventMessageNew:                 h.handleMessageNew,
		models.EventUserUpdated:                h.handleUserUpdated,
	}

	handler, ok := eventHandlers[event.EventType]
	if !ok {
		// Unknown kinds are accepted and ignored so new event types from
		// the platform never cause delivery failures.
		slog.DebugContext(ctx, "ignoring unsupported webhook event type")
		writeOK(w)
		return
	}

	if err := handler(ctx, event); err != nil {
		slog.ErrorContext(ctx, "webhook event handling failed", logging.ErrKey, err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeOK(w)
}

func (h *CallWebhookHandler) handleSessionStarted(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToCallSessionStartedPayload()
	if err != nil {
		return err
	}

	meetingUID := payload.MeetingUID()
	if meetingUID == "" {
		return domain.NewValidationError("session started event has no meeting identifier")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	return h.lifecycleService.StartSession(ctx, meetingUID)
}

func (h *CallWebhookHandler) handleParticipantLeft(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToCallSessionParticipantLeftPayload()
	if err != nil {
		return err
	}

	meetingUID, err := payload.MeetingUID()
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	return h.lifecycleService.LeaveCall(ctx, meetingUID)
}

func (h *CallWebhookHandler) handleSessionEnded(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToCallSessionEndedPayload()
	if err != nil {
		return err
	}

	meetingUID, err := payload.MeetingUID()
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	return h.lifecycleService.EndSession(ctx, meetingUID)
}

func (h *CallWebhookHandler) handleTranscriptionReady(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToCallTranscriptionReadyPayload()
	if err != nil {
		return err
	}

	meetingUID, err := payload.MeetingUID()
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	return h.lifecycleService.AttachTranscript(ctx, meetingUID, payload.CallTranscription.URL)
}

func (h *CallWebhookHandler) handleRecordingReady(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToCallRecordingReadyPayload()
	if err != nil {
		return err
	}

	meetingUID, err := payload.MeetingUID()
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	return h.lifecycleService.AttachRecording(ctx, meetingUID, payload.CallRecording.URL)
}

func (h *CallWebhookHandler) handleMessageNew(ctx context.Context, event models.CallWebhookEvent) error {
	payload, err := event.ToMessageNewPayload()
	if err != nil {
		return err
	}

	if payload.ChannelType != "" && payload.ChannelType != models.MessagingChannelType {
		slog.DebugContext(ctx, "ignoring message from unsupported channel type",
			"channel_type", payload.ChannelType)
		return nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", payload.ChannelID))
	return h.chatResponder.Respond(ctx, payload.ChannelID, payload.User.ID, payload.Message.Text)
}

// handleUserUpdated only acknowledges the event. User profiles are synced
// by the CRUD service; the webhook is delivered to this service as well
// because the platform fans events out per application, not per consumer.
func (h *CallWebhookHandler) handleUserUpdated(ctx context.Context, event models.CallWebhookEvent) error {
	if _, err := event.ToUserUpdatedPayload(); err != nil {
		return err
	}
	slog.DebugContext(ctx, "acknowledged user updated event")
	return nil
}

func statusForError(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
