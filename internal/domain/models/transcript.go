// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

// TranscriptItem is one line of a line-delimited JSON transcript as
// delivered by the communication platform.
type TranscriptItem struct {
	SpeakerID string  `json:"speaker_id"`
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	StartTs   float64 `json:"start_ts"`
	StopTs    float64 `json:"stop_ts"`
}

// SpeakerTranscriptItem is a transcript line annotated with the speaker's
// resolved display name. Unresolved speakers are labeled "Unknown".
type SpeakerTranscriptItem struct {
	TranscriptItem
	Speaker string `json:"speaker"`
}

// UnknownSpeakerName is the placeholder for speaker IDs that resolve to
// neither an agent nor a user.
const UnknownSpeakerName = "Unknown"
