// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

const (
	// MeetingProcessingSubject is the subject for enqueuing transcript
	// processing runs after a transcription becomes available.
	// The subject is of the form: converge.meetings.processing
	MeetingProcessingSubject = "converge.meetings.processing"

	// MeetingProcessingQueue is the NATS queue name for the processing
	// subscription so that concurrent service replicas share the work.
	MeetingProcessingQueue = "converge.meeting-service.queue"
)

// MeetingProcessingMessage is the schema for transcript processing runs
// published to NATS. RunID identifies the durable run so that a redelivered
// message resumes the same run instead of starting a fresh one.
type MeetingProcessingMessage struct {
	MeetingUID    string `json:"meeting_uid"`
	TranscriptURL string `json:"transcript_url"`
	RunID         string `json:"run_id"`
}
