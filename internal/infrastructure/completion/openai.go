// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package completion adapts a language model API to the domain
// CompletionService interface.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4o

// IOpenAIClient is the subset of the OpenAI client the service uses,
// extracted for mocking in tests.
type IOpenAIClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIService implements domain.CompletionService on the OpenAI chat
// completions API.
type OpenAIService struct {
	client IOpenAIClient
	model  string
}

// NewOpenAIService creates a new completion service backed by OpenAI.
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewOpenAIServiceWithClient creates a completion service with a custom
// client, used in tests.
func NewOpenAIServiceWithClient(client IOpenAIClient, model string) *OpenAIService {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIService{
		client: client,
		model:  model,
	}
}

// Complete returns the model's reply for the given conversation. An empty
// reply is an internal error: callers rely on always having content to
// deliver.
func (s *OpenAIService) Complete(ctx context.Context, messages []models.CompletionMessage) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	response, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", domain.NewUnavailableError("chat completion request failed", err)
	}

	if len(response.Choices) == 0 {
		return "", domain.NewInternalError("chat completion returned no choices")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", domain.NewInternalError("chat completion returned empty content")
	}

	slog.DebugContext(ctx, "chat completion succeeded",
		"model", s.model,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
	)
	return content, nil
}

// SummarizeTranscript generates a meeting summary from a speaker-annotated
// transcript.
func (s *OpenAIService) SummarizeTranscript(ctx context.Context, items []models.SpeakerTranscriptItem) (string, error) {
	if len(items) == 0 {
		return "", domain.NewValidationError("cannot summarize an empty transcript")
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString(fmt.Sprintf("%s: %s\n", item.Speaker, item.Text))
	}

	return s.Complete(ctx, []models.CompletionMessage{
		{
			Role: models.CompletionRoleSystem,
			Content: "You summarize meeting transcripts. Produce a concise summary " +
				"covering the topics discussed, decisions made, and action items " +
				"with owners. Refer to participants by name.",
		},
		{
			Role:    models.CompletionRoleUser,
			Content: b.String(),
		},
	})
}
