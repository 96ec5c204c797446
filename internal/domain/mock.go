// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// MockMeetingRepository implements MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) MeetingExists(ctx context.Context, meetingUID string) (bool, error) {
	args := m.Called(ctx, meetingUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) GetMeetingWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Meeting), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRepository) UpdateMeeting(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	args := m.Called(ctx, meeting, revision)
	return args.Error(0)
}

func (m *MockMeetingRepository) ListAllMeetings(ctx context.Context) ([]*models.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) UpdateWhereStatus(ctx context.Context, meetingUID string, allowed []models.MeetingStatus, mutate func(*models.Meeting)) (*models.Meeting, bool, error) {
	args := m.Called(ctx, meetingUID, allowed, mutate)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Meeting), args.Bool(1), args.Error(2)
}

// MockAgentRepository implements AgentRepository for testing
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) GetAgent(ctx context.Context, agentUID string) (*models.Agent, error) {
	args := m.Called(ctx, agentUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentRepository) ListAllAgents(ctx context.Context) ([]*models.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Agent), args.Error(1)
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockStepRepository implements StepRepository for testing
type MockStepRepository struct {
	mock.Mock
}

func (m *MockStepRepository) GetStep(ctx context.Context, runID, stepName string) (*models.StepRecord, error) {
	args := m.Called(ctx, runID, stepName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepRecord), args.Error(1)
}

func (m *MockStepRepository) DeleteRun(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

func (m *MockStepRepository) PutStep(ctx context.Context, record *models.StepRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockProcessingEventPublisher implements ProcessingEventPublisher for testing
type MockProcessingEventPublisher struct {
	mock.Mock
}

func (m *MockProcessingEventPublisher) PublishProcessing(ctx context.Context, msg models.MeetingProcessingMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockWebhookValidator implements WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateRequest(body []byte, signature, apiKey string) error {
	args := m.Called(body, signature, apiKey)
	return args.Error(0)
}

// MockCallProvider implements CallProvider for testing
type MockCallProvider struct {
	mock.Mock
}

func (m *MockCallProvider) ConnectAgent(ctx context.Context, meetingUID string, agent *models.Agent) error {
	args := m.Called(ctx, meetingUID, agent)
	return args.Error(0)
}

func (m *MockCallProvider) EndCall(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}

// MockChatProvider implements ChatProvider for testing
type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) UpsertUser(ctx context.Context, userID, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *MockChatProvider) SendMessage(ctx context.Context, channelID, userID, text string) error {
	args := m.Called(ctx, channelID, userID, text)
	return args.Error(0)
}

func (m *MockChatProvider) ChannelHistory(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

// MockCompletionService implements CompletionService for testing
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, messages []models.CompletionMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// MockTranscriptSummarizer implements TranscriptSummarizer for testing
type MockTranscriptSummarizer struct {
	mock.Mock
}

func (m *MockTranscriptSummarizer) SummarizeTranscript(ctx context.Context, items []models.SpeakerTranscriptItem) (string, error) {
	args := m.Called(ctx, items)
	return args.String(0), args.Error(1)
}

// MockTranscriptFetcher implements TranscriptFetcher for testing
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) FetchTranscript(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
