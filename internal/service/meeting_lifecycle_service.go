// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package service implements the meeting lifecycle and chat responder
// business logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/pkg/utils"
)

// MeetingLifecycleService drives meeting status transitions from call
// webhook events. All transitions go through the repository's guarded
// update so that duplicate or out-of-order webhook deliveries degrade to
// no-ops instead of corrupting state.
type MeetingLifecycleService struct {
	meetingRepository domain.MeetingRepository
	agentRepository   domain.AgentRepository
	callProvider      domain.CallProvider
	publisher         domain.ProcessingEventPublisher
}

// NewMeetingLifecycleService creates a new MeetingLifecycleService.
func NewMeetingLifecycleService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
	callProvider domain.CallProvider,
	publisher domain.ProcessingEventPublisher,
) *MeetingLifecycleService {
	return &MeetingLifecycleService{
		meetingRepository: meetingRepository,
		agentRepository:   agentRepository,
		callProvider:      callProvider,
		publisher:         publisher,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *MeetingLifecycleService) ServiceReady() bool {
	return s.meetingRepository != nil &&
		s.agentRepository != nil &&
		s.callProvider != nil &&
		s.publisher != nil
}

// StartSession transitions the meeting to Active when its call session
// starts and connects the meeting's agent to the call. A meeting that is
// already active, completed, cancelled, or processing is left untouched.
func (s *MeetingLifecycleService) StartSession(ctx context.Context, meetingUID string) error {
	now := time.Now().UTC()
	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		models.SessionStartableStatuses(),
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusActive
			m.StartedAt = utils.TimePtr(now)
		},
	)
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "session start ignored: meeting not in a startable status",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return nil
	}

	slog.InfoContext(ctx, "meeting session started", "meeting_uid", meetingUID)

	if meeting.AgentUID == "" {
		slog.InfoContext(ctx, "meeting has no agent, skipping agent connection", "meeting_uid", meetingUID)
		return nil
	}

	agent, err := s.agentRepository.GetAgent(ctx, meeting.AgentUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load agent for started session",
			logging.ErrKey, err, "meeting_uid", meetingUID, "agent_uid", meeting.AgentUID)
		return err
	}

	if err := s.callProvider.ConnectAgent(ctx, meetingUID, agent); err != nil {
		slog.ErrorContext(ctx, "failed to connect agent to call",
			logging.ErrKey, err, "meeting_uid", meetingUID, "agent_uid", agent.UID)
		return err
	}

	return nil
}

// EndSession transitions the meeting to Completed when its call session
// ends. Only an active meeting completes; anything else is a duplicate or
// out-of-order delivery and is ignored.
func (s *MeetingLifecycleService) EndSession(ctx context.Context, meetingUID string) error {
	now := time.Now().UTC()
	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		[]models.MeetingStatus{models.MeetingStatusActive},
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusCompleted
			m.EndedAt = utils.TimePtr(now)
		},
	)
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "session end ignored: meeting is not active",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return nil
	}

	slog.InfoContext(ctx, "meeting session ended",
		"meeting_uid", meetingUID,
		"duration_seconds", meeting.Duration(),
	)
	return nil
}

// LeaveCall ends the call session when a human participant leaves, so the
// agent does not linger alone on the call.
func (s *MeetingLifecycleService) LeaveCall(ctx context.Context, meetingUID string) error {
	meeting, err := s.meetingRepository.GetMeeting(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.Status != models.MeetingStatusActive {
		slog.InfoContext(ctx, "participant left a non-active meeting, nothing to end",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return nil
	}

	if err := s.callProvider.EndCall(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "failed to end call after participant left",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return err
	}

	return nil
}

// AttachTranscript records the transcript URL and enqueues a processing run
// for it. Cancelled meetings never get a transcript attached.
func (s *MeetingLifecycleService) AttachTranscript(ctx context.Context, meetingUID, transcriptURL string) error {
	if transcriptURL == "" {
		return domain.NewValidationError("transcript URL is required")
	}

	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		[]models.MeetingStatus{
			models.MeetingStatusActive,
			models.MeetingStatusCompleted,
			models.MeetingStatusProcessing,
		},
		func(m *models.Meeting) {
			m.TranscriptURL = transcriptURL
		},
	)
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "transcript ignored: meeting status does not accept transcripts",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return nil
	}

	msg := models.MeetingProcessingMessage{
		MeetingUID:    meetingUID,
		TranscriptURL: transcriptURL,
		RunID:         models.NewRunID(),
	}
	if err := s.publisher.PublishProcessing(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue transcript processing run",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return err
	}

	slog.InfoContext(ctx, "transcript attached and processing run enqueued",
		"meeting_uid", meetingUID,
		"run_id", msg.RunID,
	)
	return nil
}

// AttachRecording records the recording URL on the meeting.
func (s *MeetingLifecycleService) AttachRecording(ctx context.Context, meetingUID, recordingURL string) error {
	if recordingURL == "" {
		return domain.NewValidationError("recording URL is required")
	}

	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		[]models.MeetingStatus{
			models.MeetingStatusActive,
			models.MeetingStatusCompleted,
			models.MeetingStatusProcessing,
		},
		func(m *models.Meeting) {
			m.RecordingURL = recordingURL
		},
	)
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "recording ignored: meeting status does not accept recordings",
			"meeting_uid", meetingUID,
			"status", meeting.Status,
		)
		return nil
	}

	slog.InfoContext(ctx, "recording attached", "meeting_uid", meetingUID)
	return nil
}

// BeginProcessing moves a completed meeting into Processing for a pipeline
// run. Returns true when the meeting is in Processing afterwards: a meeting
// already in Processing is a resumed run, not an error.
func (s *MeetingLifecycleService) BeginProcessing(ctx context.Context, meetingUID string) (bool, error) {
	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		[]models.MeetingStatus{models.MeetingStatusCompleted},
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusProcessing
		},
	)
	if err != nil {
		return false, err
	}
	if applied {
		return true, nil
	}

	if meeting.Status == models.MeetingStatusProcessing {
		slog.InfoContext(ctx, "meeting already processing, resuming run", "meeting_uid", meetingUID)
		return true, nil
	}

	slog.WarnContext(ctx, "cannot begin processing: meeting is not completed",
		"meeting_uid", meetingUID,
		"status", meeting.Status,
	)
	return false, nil
}

// CommitSummary stores the generated summary and returns the meeting to
// Completed. This is the only writer of the summary field.
func (s *MeetingLifecycleService) CommitSummary(ctx context.Context, meetingUID, summary string) error {
	if summary == "" {
		return domain.NewValidationError("summary is required")
	}

	meeting, applied, err := s.meetingRepository.UpdateWhereStatus(ctx, meetingUID,
		[]models.MeetingStatus{
			models.MeetingStatusProcessing,
			models.MeetingStatusCompleted,
		},
		func(m *models.Meeting) {
			m.Summary = summary
			m.Status = models.MeetingStatusCompleted
		},
	)
	if err != nil {
		return err
	}
	if !applied {
		return domain.NewConflictError("cannot commit summary: meeting is not processing or completed")
	}

	slog.InfoContext(ctx, "meeting summary committed",
		"meeting_uid", meetingUID,
		"status", meeting.Status,
	)
	return nil
}
