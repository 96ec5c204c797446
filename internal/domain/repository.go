// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	MeetingExists(ctx context.Context, meetingUID string) (bool, error)
	GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetMeetingWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	UpdateMeeting(ctx context.Context, meeting *models.Meeting, revision uint64) error
	ListAllMeetings(ctx context.Context) ([]*models.Meeting, error)

	// UpdateWhereStatus applies mutate to the meeting only if its current
	// status is one of allowed, retrying on concurrent-writer conflicts.
	// When the status guard does not match, it returns the current meeting
	// and applied=false without error.
	UpdateWhereStatus(ctx context.Context, meetingUID string, allowed []models.MeetingStatus, mutate func(*models.Meeting)) (meeting *models.Meeting, applied bool, err error)
}

// AgentRepository defines read access to agent definitions. Agents are
// written by the CRUD service; this service only looks them up.
type AgentRepository interface {
	GetAgent(ctx context.Context, agentUID string) (*models.Agent, error)
	ListAllAgents(ctx context.Context) ([]*models.Agent, error)
}

// UserRepository defines read access to platform users.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListAllUsers(ctx context.Context) ([]*models.User, error)
}

// StepRepository stores completed pipeline step records keyed by run and
// step name so that resumed runs can skip work they already did.
type StepRepository interface {
	GetStep(ctx context.Context, runID, stepName string) (*models.StepRecord, error)
	PutStep(ctx context.Context, record *models.StepRecord) error
	DeleteRun(ctx context.Context, runID string) error
}
