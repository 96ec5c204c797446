// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	// MeetingStatusUpcoming is a scheduled meeting whose call has not started.
	MeetingStatusUpcoming MeetingStatus = "upcoming"
	// MeetingStatusActive is a meeting whose call session is in progress.
	MeetingStatusActive MeetingStatus = "active"
	// MeetingStatusCompleted is a finished meeting. Terminal.
	MeetingStatusCompleted MeetingStatus = "completed"
	// MeetingStatusCancelled is a meeting cancelled before completion. Terminal.
	MeetingStatusCancelled MeetingStatus = "cancelled"
	// MeetingStatusProcessing is a finished meeting whose transcript
	// post-processing pipeline is running.
	MeetingStatusProcessing MeetingStatus = "processing"
)

// IsTerminal reports whether no further lifecycle transitions are expected.
// Processing is not terminal: the pipeline exits it into Completed.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// Meeting is the key-value store representation of a meeting.
// The UID doubles as the external call identifier and the chat channel ID.
type Meeting struct {
	UID           string        `json:"uid"`
	AgentUID      string        `json:"agent_uid"`
	Title         string        `json:"title"`
	Status        MeetingStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	TranscriptURL string        `json:"transcript_url,omitempty"`
	RecordingURL  string        `json:"recording_url,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
}

// Duration returns the call duration in seconds. It is derived, never
// stored; zero when either timestamp is missing.
func (m *Meeting) Duration() int64 {
	if m.StartedAt == nil || m.EndedAt == nil {
		return 0
	}
	return int64(m.EndedAt.Sub(*m.StartedAt) / time.Second)
}

// SessionStartableStatuses are the statuses from which a call session may
// transition the meeting to Active.
func SessionStartableStatuses() []MeetingStatus {
	return []MeetingStatus{MeetingStatusUpcoming}
}

// Tags generates a list of tags for the meeting, used in logs.
func (m *Meeting) Tags() []string {
	var tags []string
	if m == nil {
		return nil
	}
	if m.UID != "" {
		tags = append(tags, m.UID, "meeting_uid:"+m.UID)
	}
	if m.AgentUID != "" {
		tags = append(tags, "agent_uid:"+m.AgentUID)
	}
	if m.Status != "" {
		tags = append(tags, "status:"+string(m.Status))
	}
	return tags
}
