// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Call webhook event types sent by the communication platform.
const (
	EventCallSessionStarted         = "call.session.started"
	EventCallSessionParticipantLeft = "call.session_participant_left"
	EventCallSessionEnded           = "call.session_ended"
	EventCallTranscriptionReady     = "call.transcription_ready"
	EventCallRecordingReady         = "call.recording_ready"
	EventMessageNew                 = "message.new"
	EventUserUpdated                = "user.updated"
)

// CallWebhookEvent is the decoded head of a call webhook delivery. The
// platform puts the event fields at the top level of the body next to the
// "type" discriminator, so the raw body is retained for the typed payload
// converters.
type CallWebhookEvent struct {
	EventType string
	raw       json.RawMessage
}

// UnmarshalJSON decodes the type discriminator and keeps the body.
func (c *CallWebhookEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	c.EventType = head.Type
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// CallSessionStartedPayload represents the payload for call.session.started webhook events
type CallSessionStartedPayload struct {
	CallCID string `json:"call_cid"`
	Call    struct {
		CID    string `json:"cid"`
		Custom struct {
			MeetingUID string `json:"meetingId"`
		} `json:"custom"`
	} `json:"call"`
}

// MeetingUID returns the meeting UID carried in the call's custom data.
func (p *CallSessionStartedPayload) MeetingUID() string {
	return p.Call.Custom.MeetingUID
}

// CallSessionParticipantLeftPayload represents the payload for call.session_participant_left webhook events
type CallSessionParticipantLeftPayload struct {
	CallCID     string `json:"call_cid"`
	Participant struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	} `json:"participant"`
}

// MeetingUID derives the meeting UID from the call CID.
func (p *CallSessionParticipantLeftPayload) MeetingUID() (string, error) {
	return MeetingUIDFromCallCID(p.CallCID)
}

// CallSessionEndedPayload represents the payload for call.session_ended webhook events
type CallSessionEndedPayload struct {
	CallCID string `json:"call_cid"`
	Call    struct {
		CID     string     `json:"cid"`
		EndedAt *time.Time `json:"ended_at"`
	} `json:"call"`
}

// MeetingUID derives the meeting UID from the call CID.
func (p *CallSessionEndedPayload) MeetingUID() (string, error) {
	return MeetingUIDFromCallCID(p.CallCID)
}

// CallTranscriptionReadyPayload represents the payload for call.transcription_ready webhook events
type CallTranscriptionReadyPayload struct {
	CallCID           string `json:"call_cid"`
	CallTranscription struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	} `json:"call_transcription"`
}

// MeetingUID derives the meeting UID from the call CID.
func (p *CallTranscriptionReadyPayload) MeetingUID() (string, error) {
	return MeetingUIDFromCallCID(p.CallCID)
}

// CallRecordingReadyPayload represents the payload for call.recording_ready webhook events
type CallRecordingReadyPayload struct {
	CallCID       string `json:"call_cid"`
	CallRecording struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	} `json:"call_recording"`
}

// MeetingUID derives the meeting UID from the call CID.
func (p *CallRecordingReadyPayload) MeetingUID() (string, error) {
	return MeetingUIDFromCallCID(p.CallCID)
}

// MessageNewPayload represents the payload for message.new webhook events.
// The channel ID is the meeting UID for meeting chat channels.
type MessageNewPayload struct {
	ChannelID   string `json:"channel_id"`
	ChannelType string `json:"channel_type"`
	User        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Message struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

// UserUpdatedPayload represents the payload for user.updated webhook events
type UserUpdatedPayload struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
}

// MeetingUIDFromCallCID extracts the meeting UID from a call CID of the form
// "<call_type>:<meeting_uid>". Only the first colon is significant.
func MeetingUIDFromCallCID(callCID string) (string, error) {
	_, uid, found := strings.Cut(callCID, ":")
	if !found || uid == "" {
		return "", fmt.Errorf("invalid call cid: %q", callCID)
	}
	return uid, nil
}

// Helper methods to convert from CallWebhookEvent to typed payloads

// ToCallSessionStartedPayload converts the webhook event to a typed call session started payload
func (c *CallWebhookEvent) ToCallSessionStartedPayload() (*CallSessionStartedPayload, error) {
	if c.EventType != EventCallSessionStarted {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventCallSessionStarted, c.EventType)
	}

	var payload CallSessionStartedPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to call session started payload: %w", err)
	}

	return &payload, nil
}

// ToCallSessionParticipantLeftPayload converts the webhook event to a typed participant left payload
func (c *CallWebhookEvent) ToCallSessionParticipantLeftPayload() (*CallSessionParticipantLeftPayload, error) {
	if c.EventType != EventCallSessionParticipantLeft {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventCallSessionParticipantLeft, c.EventType)
	}

	var payload CallSessionParticipantLeftPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to participant left payload: %w", err)
	}

	return &payload, nil
}

// ToCallSessionEndedPayload converts the webhook event to a typed call session ended payload
func (c *CallWebhookEvent) ToCallSessionEndedPayload() (*CallSessionEndedPayload, error) {
	if c.EventType != EventCallSessionEnded {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventCallSessionEnded, c.EventType)
	}

	var payload CallSessionEndedPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to call session ended payload: %w", err)
	}

	return &payload, nil
}

// ToCallTranscriptionReadyPayload converts the webhook event to a typed transcription ready payload
func (c *CallWebhookEvent) ToCallTranscriptionReadyPayload() (*CallTranscriptionReadyPayload, error) {
	if c.EventType != EventCallTranscriptionReady {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventCallTranscriptionReady, c.EventType)
	}

	var payload CallTranscriptionReadyPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to transcription ready payload: %w", err)
	}

	return &payload, nil
}

// ToCallRecordingReadyPayload converts the webhook event to a typed recording ready payload
func (c *CallWebhookEvent) ToCallRecordingReadyPayload() (*CallRecordingReadyPayload, error) {
	if c.EventType != EventCallRecordingReady {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventCallRecordingReady, c.EventType)
	}

	var payload CallRecordingReadyPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to recording ready payload: %w", err)
	}

	return &payload, nil
}

// ToMessageNewPayload converts the webhook event to a typed message new payload
func (c *CallWebhookEvent) ToMessageNewPayload() (*MessageNewPayload, error) {
	if c.EventType != EventMessageNew {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventMessageNew, c.EventType)
	}

	var payload MessageNewPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to message new payload: %w", err)
	}

	return &payload, nil
}

// ToUserUpdatedPayload converts the webhook event to a typed user updated payload
func (c *CallWebhookEvent) ToUserUpdatedPayload() (*UserUpdatedPayload, error) {
	if c.EventType != EventUserUpdated {
		return nil, fmt.Errorf("invalid event type: expected %s, got %s", EventUserUpdated, c.EventType)
	}

	var payload UserUpdatedPayload
	if err := json.Unmarshal(c.raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to user updated payload: %w", err)
	}

	return &payload, nil
}
