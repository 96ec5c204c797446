// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/akamensky/base58"
	"github.com/google/uuid"
)

// NewRunID returns a new pipeline run identifier. Run IDs are base58-encoded
// UUIDs: compact, case-sensitive-safe, and free of NATS key separators.
func NewRunID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// StepRecord is the durable record of one completed pipeline step within a
// run. Output holds the step's JSON-encoded result so that a resumed run can
// replay the step without re-executing it.
type StepRecord struct {
	RunID       string    `msgpack:"run_id"`
	StepName    string    `msgpack:"step_name"`
	Output      []byte    `msgpack:"output"`
	CompletedAt time.Time `msgpack:"completed_at"`
}
