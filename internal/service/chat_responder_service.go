// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
)

// chatHistoryLimit is how many recent channel messages are replayed into
// the completion conversation.
const chatHistoryLimit = 5

// ChatResponderService answers questions in a completed meeting's chat
// channel on behalf of the meeting's agent.
type ChatResponderService struct {
	meetingRepository domain.MeetingRepository
	agentRepository   domain.AgentRepository
	chatProvider      domain.ChatProvider
	completionService domain.CompletionService
}

// NewChatResponderService creates a new ChatResponderService.
func NewChatResponderService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
	chatProvider domain.ChatProvider,
	completionService domain.CompletionService,
) *ChatResponderService {
	return &ChatResponderService{
		meetingRepository: meetingRepository,
		agentRepository:   agentRepository,
		chatProvider:      chatProvider,
		completionService: completionService,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *ChatResponderService) ServiceReady() bool {
	return s.meetingRepository != nil &&
		s.agentRepository != nil &&
		s.chatProvider != nil &&
		s.completionService != nil
}

// Respond generates and posts the agent's reply to a new channel message.
// The channel ID is the meeting UID. Messages authored by the agent itself
// are skipped so the agent never replies to its own messages.
func (s *ChatResponderService) Respond(ctx context.Context, channelID, authorUserID, text string) error {
	if strings.TrimSpace(text) == "" {
		slog.DebugContext(ctx, "ignoring empty channel message", "channel_id", channelID)
		return nil
	}

	meeting, err := s.meetingRepository.GetMeeting(ctx, channelID)
	if err != nil {
		return err
	}

	if meeting.Status != models.MeetingStatusCompleted {
		slog.InfoContext(ctx, "ignoring channel message: meeting is not completed",
			"meeting_uid", meeting.UID,
			"status", meeting.Status,
		)
		return nil
	}

	if meeting.AgentUID == "" {
		slog.InfoContext(ctx, "ignoring channel message: meeting has no agent", "meeting_uid", meeting.UID)
		return nil
	}

	agent, err := s.agentRepository.GetAgent(ctx, meeting.AgentUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load agent for channel message",
			logging.ErrKey, err, "meeting_uid", meeting.UID, "agent_uid", meeting.AgentUID)
		return err
	}

	// Self-echo guard: the agent's own messages come back through the
	// same webhook.
	if authorUserID == agent.UserUID {
		slog.DebugContext(ctx, "ignoring agent's own message", "meeting_uid", meeting.UID)
		return nil
	}

	conversation, err := s.buildConversation(ctx, meeting, agent, text)
	if err != nil {
		return err
	}

	reply, err := s.completionService.Complete(ctx, conversation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate chat reply",
			logging.ErrKey, err, "meeting_uid", meeting.UID)
		return err
	}

	if err := s.chatProvider.UpsertUser(ctx, agent.UserUID, agent.Name); err != nil {
		slog.ErrorContext(ctx, "failed to upsert agent chat user",
			logging.ErrKey, err, "meeting_uid", meeting.UID, "agent_uid", agent.UID)
		return err
	}

	if err := s.chatProvider.SendMessage(ctx, channelID, agent.UserUID, reply); err != nil {
		slog.ErrorContext(ctx, "failed to send chat reply",
			logging.ErrKey, err, "meeting_uid", meeting.UID)
		return err
	}

	slog.InfoContext(ctx, "posted agent reply to meeting channel", "meeting_uid", meeting.UID)
	return nil
}

// buildConversation assembles the completion conversation: a system prompt
// from the agent's instructions and the meeting summary, the last few
// non-empty channel messages as history, and the new message last.
func (s *ChatResponderService) buildConversation(
	ctx context.Context,
	meeting *models.Meeting,
	agent *models.Agent,
	text string,
) ([]models.CompletionMessage, error) {
	systemPrompt := fmt.Sprintf(
		"You are %s, an assistant for the meeting %q. Answer questions about the meeting using its summary.\n\n"+
			"Meeting summary:\n%s",
		agent.Name, meeting.Title, meeting.Summary,
	)
	if agent.Instructions != "" {
		systemPrompt += "\n\nAdditional instructions:\n" + agent.Instructions
	}

	conversation := []models.CompletionMessage{
		{Role: models.CompletionRoleSystem, Content: systemPrompt},
	}

	history, err := s.chatProvider.ChannelHistory(ctx, meeting.UID, chatHistoryLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load channel history",
			logging.ErrKey, err, "meeting_uid", meeting.UID)
		return nil, err
	}

	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		role := models.CompletionRoleUser
		if msg.UserID == agent.UserUID {
			role = models.CompletionRoleAssistant
		}
		conversation = append(conversation, models.CompletionMessage{
			Role:    role,
			Content: msg.Text,
		})
	}

	return append(conversation, models.CompletionMessage{
		Role:    models.CompletionRoleUser,
		Content: text,
	}), nil
}
