// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// channelType is the platform channel type for meeting chat channels. The
// channel ID is the meeting UID.
const channelType = "messaging"

// UpsertUserRequest represents the request to create or update a chat user
type UpsertUserRequest struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"user"`
}

// SendMessageRequest represents the request to post a channel message
type SendMessageRequest struct {
	Message struct {
		Text   string `json:"text"`
		UserID string `json:"user_id"`
	} `json:"message"`
}

// channelMessagesResponse is the platform response for channel history
type channelMessagesResponse struct {
	Messages []struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Text string `json:"text"`
	} `json:"messages"`
}

// UpsertUser creates or updates the chat user that messages are sent as.
func (c *Client) UpsertUser(ctx context.Context, userID, name string) error {
	var request UpsertUserRequest
	request.User.ID = userID
	request.User.Name = name

	resp, err := c.doRequest(ctx, http.MethodPost, "/users", request)
	if err != nil {
		return fmt.Errorf("failed to upsert chat user: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return nil
}

// SendMessage posts a message to the channel as the given user.
func (c *Client) SendMessage(ctx context.Context, channelID, userID, text string) error {
	path := fmt.Sprintf("/channels/%s/%s/message", channelType, url.PathEscape(channelID))

	var request SendMessageRequest
	request.Message.Text = text
	request.Message.UserID = userID

	resp, err := c.doRequest(ctx, http.MethodPost, path, request)
	if err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return nil
}

// ChannelHistory returns the most recent channel messages, newest last.
func (c *Client) ChannelHistory(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error) {
	path := fmt.Sprintf("/channels/%s/%s/messages?limit=%d", channelType, url.PathEscape(channelID), limit)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel history: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var response channelMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode channel history response: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(response.Messages))
	for _, msg := range response.Messages {
		messages = append(messages, models.ChatMessage{
			UserID: msg.User.ID,
			Text:   msg.Text,
		})
	}
	return messages, nil
}
