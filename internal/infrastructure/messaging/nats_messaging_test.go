// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// MockNATSConn implements INatsConn for testing
type MockNATSConn struct {
	mock.Mock
}

func (m *MockNATSConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNATSConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func TestMessageBuilder_PublishProcessing(t *testing.T) {
	msg := models.MeetingProcessingMessage{
		MeetingUID:    "meeting-123",
		TranscriptURL: "https://storage.example.com/transcripts/meeting-123.jsonl",
		RunID:         "run-abc",
	}
	expectedData, err := json.Marshal(msg)
	require.NoError(t, err)

	mockConn := new(MockNATSConn)
	mockConn.On("Publish", models.MeetingProcessingSubject, expectedData).Return(nil)

	builder := NewMessageBuilder(mockConn)
	err = builder.PublishProcessing(context.Background(), msg)

	assert.NoError(t, err)
	mockConn.AssertExpectations(t)
}

func TestMessageBuilder_PublishProcessing_PublishError(t *testing.T) {
	mockConn := new(MockNATSConn)
	mockConn.On("Publish", models.MeetingProcessingSubject, mock.Anything).Return(errors.New("publish failed"))

	builder := NewMessageBuilder(mockConn)
	err := builder.PublishProcessing(context.Background(), models.MeetingProcessingMessage{
		MeetingUID: "meeting-123",
		RunID:      "run-abc",
	})

	assert.Error(t, err)
	mockConn.AssertExpectations(t)
}
