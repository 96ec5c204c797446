// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeetingStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   MeetingStatus
		expected bool
	}{
		{
			name:     "upcoming is not terminal",
			status:   MeetingStatusUpcoming,
			expected: false,
		},
		{
			name:     "active is not terminal",
			status:   MeetingStatusActive,
			expected: false,
		},
		{
			name:     "processing is not terminal",
			status:   MeetingStatusProcessing,
			expected: false,
		},
		{
			name:     "completed is terminal",
			status:   MeetingStatusCompleted,
			expected: true,
		},
		{
			name:     "cancelled is terminal",
			status:   MeetingStatusCancelled,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsTerminal())
		})
	}
}

func TestMeeting_Duration(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	tests := []struct {
		name     string
		meeting  *Meeting
		expected int64
	}{
		{
			name:     "no timestamps",
			meeting:  &Meeting{},
			expected: 0,
		},
		{
			name:     "only started",
			meeting:  &Meeting{StartedAt: &start},
			expected: 0,
		},
		{
			name:     "only ended",
			meeting:  &Meeting{EndedAt: &end},
			expected: 0,
		},
		{
			name:     "both timestamps",
			meeting:  &Meeting{StartedAt: &start, EndedAt: &end},
			expected: 2700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meeting.Duration())
		})
	}
}

func TestMeeting_Tags(t *testing.T) {
	tests := []struct {
		name     string
		meeting  *Meeting
		expected []string
	}{
		{
			name:     "nil meeting returns nil",
			meeting:  nil,
			expected: nil,
		},
		{
			name:     "empty meeting returns no tags",
			meeting:  &Meeting{},
			expected: nil,
		},
		{
			name: "all identifying fields",
			meeting: &Meeting{
				UID:      "meeting-123",
				AgentUID: "agent-456",
				Status:   MeetingStatusActive,
			},
			expected: []string{
				"meeting-123",
				"meeting_uid:meeting-123",
				"agent_uid:agent-456",
				"status:active",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meeting.Tags())
		})
	}
}

func TestSessionStartableStatuses(t *testing.T) {
	statuses := SessionStartableStatuses()
	assert.Equal(t, []MeetingStatus{MeetingStatusUpcoming}, statuses)
	assert.NotContains(t, statuses, MeetingStatusCompleted)
	assert.NotContains(t, statuses, MeetingStatusCancelled)
	assert.NotContains(t, statuses, MeetingStatusProcessing)
	assert.NotContains(t, statuses, MeetingStatusActive)
}
