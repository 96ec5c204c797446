// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

type responderMocks struct {
	meetingRepo *domain.MockMeetingRepository
	agentRepo   *domain.MockAgentRepository
	chat        *domain.MockChatProvider
	completion  *domain.MockCompletionService
}

func newChatResponderService() (*ChatResponderService, responderMocks) {
	m := responderMocks{
		meetingRepo: new(domain.MockMeetingRepository),
		agentRepo:   new(domain.MockAgentRepository),
		chat:        new(domain.MockChatProvider),
		completion:  new(domain.MockCompletionService),
	}
	svc := NewChatResponderService(m.meetingRepo, m.agentRepo, m.chat, m.completion)
	return svc, m
}

func completedMeetingFixture() (*models.Meeting, *models.Agent) {
	meeting := &models.Meeting{
		UID:      "meeting-1",
		AgentUID: "agent-1",
		Title:    "Roadmap Review",
		Status:   models.MeetingStatusCompleted,
		Summary:  "Ada presented the roadmap. Grace approved it.",
	}
	agent := &models.Agent{
		UID:          "agent-1",
		Name:         "Notetaker",
		UserUID:      "agent-user-1",
		Instructions: "Be concise.",
	}
	return meeting, agent
}

func TestRespond(t *testing.T) {
	svc, m := newChatResponderService()
	ctx := context.Background()
	meeting, agent := completedMeetingFixture()

	m.meetingRepo.On("GetMeeting", ctx, "meeting-1").Return(meeting, nil)
	m.agentRepo.On("GetAgent", ctx, "agent-1").Return(agent, nil)
	m.chat.On("ChannelHistory", ctx, "meeting-1", chatHistoryLimit).Return([]models.ChatMessage{
		{UserID: "user-1", Text: "Hi everyone"},
		{UserID: "agent-user-1", Text: "Hello, ask me anything about the meeting."},
		{UserID: "user-1", Text: ""},
	}, nil)

	var gotConversation []models.CompletionMessage
	m.completion.On("Complete", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			gotConversation = args.Get(1).([]models.CompletionMessage)
		}).
		Return("The roadmap was approved.", nil)
	m.chat.On("UpsertUser", ctx, "agent-user-1", "Notetaker").Return(nil)
	m.chat.On("SendMessage", ctx, "meeting-1", "agent-user-1", "The roadmap was approved.").Return(nil)

	err := svc.Respond(ctx, "meeting-1", "user-1", "Was the roadmap approved?")
	require.NoError(t, err)

	require.Len(t, gotConversation, 4)
	assert.Equal(t, models.CompletionRoleSystem, gotConversation[0].Role)
	assert.Contains(t, gotConversation[0].Content, "Ada presented the roadmap.")
	assert.Contains(t, gotConversation[0].Content, "Be concise.")
	// Empty history messages are dropped; roles follow authorship.
	assert.Equal(t, models.CompletionRoleUser, gotConversation[1].Role)
	assert.Equal(t, models.CompletionRoleAssistant, gotConversation[2].Role)
	assert.Equal(t, "Was the roadmap approved?", gotConversation[3].Content)
	m.chat.AssertExpectations(t)
}

func TestRespond_SelfEchoGuard(t *testing.T) {
	svc, m := newChatResponderService()
	ctx := context.Background()
	meeting, agent := completedMeetingFixture()

	m.meetingRepo.On("GetMeeting", ctx, "meeting-1").Return(meeting, nil)
	m.agentRepo.On("GetAgent", ctx, "agent-1").Return(agent, nil)

	err := svc.Respond(ctx, "meeting-1", "agent-user-1", "The roadmap was approved.")
	require.NoError(t, err)

	m.completion.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	m.chat.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_MeetingNotCompleted(t *testing.T) {
	tests := []struct {
		name   string
		status models.MeetingStatus
	}{
		{name: "upcoming", status: models.MeetingStatusUpcoming},
		{name: "active", status: models.MeetingStatusActive},
		{name: "processing", status: models.MeetingStatusProcessing},
		{name: "cancelled", status: models.MeetingStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newChatResponderService()
			ctx := context.Background()

			m.meetingRepo.On("GetMeeting", ctx, "meeting-1").
				Return(&models.Meeting{UID: "meeting-1", AgentUID: "agent-1", Status: tt.status}, nil)

			err := svc.Respond(ctx, "meeting-1", "user-1", "hello?")
			require.NoError(t, err)
			m.completion.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestRespond_EmptyMessage(t *testing.T) {
	svc, m := newChatResponderService()

	err := svc.Respond(context.Background(), "meeting-1", "user-1", "   ")
	require.NoError(t, err)
	m.meetingRepo.AssertNotCalled(t, "GetMeeting", mock.Anything, mock.Anything)
}

func TestRespond_MeetingNotFound(t *testing.T) {
	svc, m := newChatResponderService()
	ctx := context.Background()

	m.meetingRepo.On("GetMeeting", ctx, "unknown-channel").
		Return(nil, domain.NewNotFoundError("meeting not found"))

	err := svc.Respond(ctx, "unknown-channel", "user-1", "hello?")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestRespond_CompletionError(t *testing.T) {
	svc, m := newChatResponderService()
	ctx := context.Background()
	meeting, agent := completedMeetingFixture()

	m.meetingRepo.On("GetMeeting", ctx, "meeting-1").Return(meeting, nil)
	m.agentRepo.On("GetAgent", ctx, "agent-1").Return(agent, nil)
	m.chat.On("ChannelHistory", ctx, "meeting-1", chatHistoryLimit).Return([]models.ChatMessage{}, nil)
	m.completion.On("Complete", ctx, mock.Anything).
		Return("", domain.NewInternalError("chat completion returned empty content"))

	err := svc.Respond(ctx, "meeting-1", "user-1", "hello?")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	m.chat.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_SendMessageError(t *testing.T) {
	svc, m := newChatResponderService()
	ctx := context.Background()
	meeting, agent := completedMeetingFixture()

	m.meetingRepo.On("GetMeeting", ctx, "meeting-1").Return(meeting, nil)
	m.agentRepo.On("GetAgent", ctx, "agent-1").Return(agent, nil)
	m.chat.On("ChannelHistory", ctx, "meeting-1", chatHistoryLimit).Return([]models.ChatMessage{}, nil)
	m.completion.On("Complete", ctx, mock.Anything).Return("reply", nil)
	m.chat.On("UpsertUser", ctx, "agent-user-1", "Notetaker").Return(nil)
	m.chat.On("SendMessage", ctx, "meeting-1", "agent-user-1", "reply").Return(errors.New("channel gone"))

	err := svc.Respond(ctx, "meeting-1", "user-1", "hello?")
	assert.Error(t, err)
}
