// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// callType is the platform call type for meetings. The call CID is
// "<callType>:<meeting_uid>".
const callType = "default"

// ConnectAgentRequest represents the request to join an agent to a live call
type ConnectAgentRequest struct {
	AgentID      string `json:"agent_id"`
	AgentName    string `json:"agent_name,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// ConnectAgent joins the meeting's agent to the live call session so it can
// listen and speak.
func (c *Client) ConnectAgent(ctx context.Context, meetingUID string, agent *models.Agent) error {
	if agent == nil {
		return fmt.Errorf("agent is required to connect to call")
	}

	path := fmt.Sprintf("/calls/%s/%s/agents", callType, url.PathEscape(meetingUID))
	request := ConnectAgentRequest{
		AgentID:      agent.UID,
		AgentName:    agent.Name,
		Instructions: agent.Instructions,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, request)
	if err != nil {
		return fmt.Errorf("failed to connect agent to call: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	slog.InfoContext(ctx, "connected agent to call",
		"meeting_uid", meetingUID,
		"agent_uid", agent.UID,
	)
	return nil
}

// EndCall terminates the call session for the meeting. Ending an already
// ended call is not an error on the platform side.
func (c *Client) EndCall(ctx context.Context, meetingUID string) error {
	path := fmt.Sprintf("/calls/%s/%s/mark_ended", callType, url.PathEscape(meetingUID))

	resp, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return fmt.Errorf("failed to end call: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	slog.InfoContext(ctx, "ended call session", "meeting_uid", meetingUID)
	return nil
}
