// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/pkg/utils"
)

// updateWhereStatusMaxAttempts bounds the CAS retry loop on concurrent
// writer conflicts.
const updateWhereStatusMaxAttempts = 5

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](meetings, "meeting"),
	}
}

func (r *NatsMeetingRepository) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	return r.Create(ctx, meeting.UID, meeting)
}

func (r *NatsMeetingRepository) MeetingExists(ctx context.Context, meetingUID string) (bool, error) {
	return r.Exists(ctx, meetingUID)
}

func (r *NatsMeetingRepository) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	return r.Get(ctx, meetingUID)
}

func (r *NatsMeetingRepository) GetMeetingWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	return r.GetWithRevision(ctx, meetingUID)
}

func (r *NatsMeetingRepository) UpdateMeeting(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())
	return r.Update(ctx, meeting.UID, meeting, revision)
}

func (r *NatsMeetingRepository) ListAllMeetings(ctx context.Context) ([]*models.Meeting, error) {
	return r.ListEntities(ctx)
}

// UpdateWhereStatus applies mutate to the meeting only while its status is
// one of allowed. The status is re-checked on every CAS attempt so a
// concurrent transition cannot slip past the guard. A guard miss is not an
// error: the caller gets the current meeting and applied=false.
func (r *NatsMeetingRepository) UpdateWhereStatus(
	ctx context.Context,
	meetingUID string,
	allowed []models.MeetingStatus,
	mutate func(*models.Meeting),
) (*models.Meeting, bool, error) {
	var lastErr error
	for attempt := 0; attempt < updateWhereStatusMaxAttempts; attempt++ {
		meeting, revision, err := r.GetWithRevision(ctx, meetingUID)
		if err != nil {
			return nil, false, err
		}

		if !slices.Contains(allowed, meeting.Status) {
			slog.DebugContext(ctx, "meeting status guard did not match, skipping update",
				"meeting_uid", meetingUID,
				"status", meeting.Status,
			)
			return meeting, false, nil
		}

		mutate(meeting)
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())

		err = r.Update(ctx, meetingUID, meeting, revision)
		if err == nil {
			return meeting, true, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return nil, false, err
		}
		lastErr = err
		slog.DebugContext(ctx, "meeting modified concurrently, retrying guarded update",
			"meeting_uid", meetingUID,
			"attempt", attempt+1,
			logging.ErrKey, err,
		)
	}

	return nil, false, domain.NewConflictError("meeting update contention exceeded retry budget", lastErr)
}
