// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

func newTestMeetingRepo(t *testing.T) (*NatsMeetingRepository, *mockNatsKeyValue) {
	t.Helper()
	kv := newMockNatsKeyValue()
	return NewNatsMeetingRepository(kv), kv
}

func putTestMeeting(t *testing.T, kv *mockNatsKeyValue, meeting *models.Meeting) {
	t.Helper()
	data, err := json.Marshal(meeting)
	require.NoError(t, err)
	_, err = kv.Put(context.Background(), meeting.UID, data)
	require.NoError(t, err)
}

func TestNatsMeetingRepository_GetMeeting(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{
		UID:    "meeting-1",
		Title:  "Planning",
		Status: models.MeetingStatusUpcoming,
	})

	meeting, err := repo.GetMeeting(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "meeting-1", meeting.UID)
	assert.Equal(t, models.MeetingStatusUpcoming, meeting.Status)
}

func TestNatsMeetingRepository_GetMeeting_NotFound(t *testing.T) {
	repo, _ := newTestMeetingRepo(t)

	meeting, err := repo.GetMeeting(context.Background(), "missing")
	assert.Nil(t, meeting)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsMeetingRepository_MeetingExists(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusActive})

	exists, err := repo.MeetingExists(ctx, "meeting-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.MeetingExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNatsMeetingRepository_UpdateMeeting(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming})

	meeting, revision, err := repo.GetMeetingWithRevision(ctx, "meeting-1")
	require.NoError(t, err)

	meeting.Title = "Renamed"
	require.NoError(t, repo.UpdateMeeting(ctx, meeting, revision))

	updated, err := repo.GetMeeting(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestNatsMeetingRepository_UpdateMeeting_StaleRevision(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming})

	meeting, revision, err := repo.GetMeetingWithRevision(ctx, "meeting-1")
	require.NoError(t, err)

	// Another writer bumps the revision.
	putTestMeeting(t, kv, meeting)

	err = repo.UpdateMeeting(ctx, meeting, revision)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsMeetingRepository_UpdateWhereStatus_Applied(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming})

	started := time.Now().UTC()
	meeting, applied, err := repo.UpdateWhereStatus(ctx, "meeting-1",
		[]models.MeetingStatus{models.MeetingStatusUpcoming},
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusActive
			m.StartedAt = &started
		},
	)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.MeetingStatusActive, meeting.Status)
	require.NotNil(t, meeting.StartedAt)

	stored, err := repo.GetMeeting(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusActive, stored.Status)
}

func TestNatsMeetingRepository_UpdateWhereStatus_GuardMiss(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusCompleted})

	meeting, applied, err := repo.UpdateWhereStatus(ctx, "meeting-1",
		[]models.MeetingStatus{models.MeetingStatusUpcoming},
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusActive
		},
	)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.MeetingStatusCompleted, meeting.Status)

	// The store is untouched.
	stored, err := repo.GetMeeting(ctx, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusCompleted, stored.Status)
}

func TestNatsMeetingRepository_UpdateWhereStatus_RetriesOnConflict(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming})

	// Interleave one concurrent write after the first read so that the
	// first CAS attempt fails and the loop retries.
	interfered := false
	kv.onGet = func(key string) {
		if interfered {
			return
		}
		interfered = true
		data, _ := json.Marshal(&models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming, Title: "interloper"})
		kv.data["meeting-1"] = data
		kv.revisions["meeting-1"] = kv.revisions["meeting-1"] + 1
	}

	meeting, applied, err := repo.UpdateWhereStatus(ctx, "meeting-1",
		[]models.MeetingStatus{models.MeetingStatusUpcoming},
		func(m *models.Meeting) {
			m.Status = models.MeetingStatusActive
		},
	)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.MeetingStatusActive, meeting.Status)
}

func TestNatsMeetingRepository_UpdateWhereStatus_NotFound(t *testing.T) {
	repo, _ := newTestMeetingRepo(t)

	_, applied, err := repo.UpdateWhereStatus(context.Background(), "missing",
		[]models.MeetingStatus{models.MeetingStatusUpcoming},
		func(m *models.Meeting) {},
	)
	assert.False(t, applied)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsMeetingRepository_ListAllMeetings(t *testing.T) {
	repo, kv := newTestMeetingRepo(t)
	ctx := context.Background()

	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusUpcoming})
	putTestMeeting(t, kv, &models.Meeting{UID: "meeting-2", Status: models.MeetingStatusActive})

	meetings, err := repo.ListAllMeetings(ctx)
	require.NoError(t, err)
	assert.Len(t, meetings, 2)
}

func TestNatsMeetingRepository_NotReady(t *testing.T) {
	repo := NewNatsMeetingRepository(nil)

	_, err := repo.GetMeeting(context.Background(), "meeting-1")
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
