// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package completion

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// mockOpenAIClient implements IOpenAIClient for testing
type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completionResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
		},
	}
}

func TestOpenAIService_Complete(t *testing.T) {
	client := new(mockOpenAIClient)
	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == openai.GPT4o &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == "system" &&
			req.Messages[1].Role == "user"
	})).Return(completionResponse("The action items were assigned."), nil)

	service := NewOpenAIServiceWithClient(client, "")
	reply, err := service.Complete(context.Background(), []models.CompletionMessage{
		{Role: models.CompletionRoleSystem, Content: "You are a meeting assistant."},
		{Role: models.CompletionRoleUser, Content: "What were the action items?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "The action items were assigned.", reply)
	client.AssertExpectations(t)
}

func TestOpenAIService_Complete_EmptyContent(t *testing.T) {
	tests := []struct {
		name     string
		response openai.ChatCompletionResponse
	}{
		{
			name:     "no choices",
			response: openai.ChatCompletionResponse{},
		},
		{
			name:     "empty content",
			response: completionResponse(""),
		},
		{
			name:     "whitespace only content",
			response: completionResponse("  \n\t"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockOpenAIClient)
			client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tt.response, nil)

			service := NewOpenAIServiceWithClient(client, "")
			_, err := service.Complete(context.Background(), []models.CompletionMessage{
				{Role: models.CompletionRoleUser, Content: "hello"},
			})

			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
		})
	}
}

func TestOpenAIService_Complete_APIError(t *testing.T) {
	client := new(mockOpenAIClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("rate limited"))

	service := NewOpenAIServiceWithClient(client, "")
	_, err := service.Complete(context.Background(), []models.CompletionMessage{
		{Role: models.CompletionRoleUser, Content: "hello"},
	})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestOpenAIService_SummarizeTranscript(t *testing.T) {
	var gotRequest openai.ChatCompletionRequest
	client := new(mockOpenAIClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotRequest = args.Get(1).(openai.ChatCompletionRequest)
		}).
		Return(completionResponse("Ada presented the roadmap."), nil)

	service := NewOpenAIServiceWithClient(client, openai.GPT4o)
	summary, err := service.SummarizeTranscript(context.Background(), []models.SpeakerTranscriptItem{
		{TranscriptItem: models.TranscriptItem{Text: "Here is the roadmap."}, Speaker: "Ada"},
		{TranscriptItem: models.TranscriptItem{Text: "Looks good to me."}, Speaker: "Grace"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada presented the roadmap.", summary)
	require.Len(t, gotRequest.Messages, 2)
	assert.Contains(t, gotRequest.Messages[1].Content, "Ada: Here is the roadmap.")
	assert.Contains(t, gotRequest.Messages[1].Content, "Grace: Looks good to me.")
}

func TestOpenAIService_SummarizeTranscript_Empty(t *testing.T) {
	service := NewOpenAIServiceWithClient(new(mockOpenAIClient), "")

	_, err := service.SummarizeTranscript(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
