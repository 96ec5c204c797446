// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/pkg/concurrent"
)

// Transcript pipeline step names. Step records are keyed by these, so
// renaming one orphans the stored outputs of in-flight runs.
const (
	StepFetchTranscript = "fetch-transcript"
	StepParseTranscript = "parse-transcript"
	StepAddSpeakers     = "add-speakers"
	StepSummarize       = "summarize"
	StepSaveSummary     = "save-summary"
)

// MeetingLifecycle is the slice of the lifecycle service the processor
// needs to move meetings through processing.
type MeetingLifecycle interface {
	BeginProcessing(ctx context.Context, meetingUID string) (bool, error)
	CommitSummary(ctx context.Context, meetingUID, summary string) error
}

// TranscriptProcessor turns a raw call transcript into a stored meeting
// summary through a durable five-step pipeline.
type TranscriptProcessor struct {
	engine          *Engine
	fetcher         domain.TranscriptFetcher
	agentRepository domain.AgentRepository
	userRepository  domain.UserRepository
	summarizer      domain.TranscriptSummarizer
	lifecycle       MeetingLifecycle
	lookupPool      *concurrent.WorkerPool
}

// NewTranscriptProcessor creates a new TranscriptProcessor.
func NewTranscriptProcessor(
	engine *Engine,
	fetcher domain.TranscriptFetcher,
	agentRepository domain.AgentRepository,
	userRepository domain.UserRepository,
	summarizer domain.TranscriptSummarizer,
	lifecycle MeetingLifecycle,
) *TranscriptProcessor {
	return &TranscriptProcessor{
		engine:          engine,
		fetcher:         fetcher,
		agentRepository: agentRepository,
		userRepository:  userRepository,
		summarizer:      summarizer,
		lifecycle:       lifecycle,
		lookupPool:      concurrent.NewWorkerPool(2),
	}
}

// Process executes the transcript pipeline for one processing message. The
// run is retried with backoff on transient failures; completed steps are
// replayed from the step store on each retry or redelivery.
func (p *TranscriptProcessor) Process(ctx context.Context, msg models.MeetingProcessingMessage) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", msg.MeetingUID))
	ctx = logging.AppendCtx(ctx, slog.String("run_id", msg.RunID))

	if msg.MeetingUID == "" || msg.TranscriptURL == "" || msg.RunID == "" {
		return domain.NewValidationError("processing message is missing required fields")
	}

	ok, err := p.lifecycle.BeginProcessing(ctx, msg.MeetingUID)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "skipping processing run: meeting is not ready for processing")
		return nil
	}

	if err := p.engine.Execute(ctx, msg.RunID, func(ctx context.Context) error {
		return p.runSteps(ctx, msg)
	}); err != nil {
		return err
	}

	// Step records are only needed while the run can still be resumed.
	if err := p.engine.CleanupRun(ctx, msg.RunID); err != nil {
		slog.WarnContext(ctx, "failed to clean up completed run", logging.ErrKey, err)
	}
	return nil
}

func (p *TranscriptProcessor) runSteps(ctx context.Context, msg models.MeetingProcessingMessage) error {
	raw, err := RunStep(ctx, p.engine, msg.RunID, StepFetchTranscript, func(ctx context.Context) (string, error) {
		data, err := p.fetcher.FetchTranscript(ctx, msg.TranscriptURL)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		return err
	}

	items, err := RunStep(ctx, p.engine, msg.RunID, StepParseTranscript, func(ctx context.Context) ([]models.TranscriptItem, error) {
		return parseTranscript(raw)
	})
	if err != nil {
		return err
	}

	annotated, err := RunStep(ctx, p.engine, msg.RunID, StepAddSpeakers, func(ctx context.Context) ([]models.SpeakerTranscriptItem, error) {
		return p.addSpeakers(ctx, items)
	})
	if err != nil {
		return err
	}

	summary, err := RunStep(ctx, p.engine, msg.RunID, StepSummarize, func(ctx context.Context) (string, error) {
		return p.summarizer.SummarizeTranscript(ctx, annotated)
	})
	if err != nil {
		return err
	}

	_, err = RunStep(ctx, p.engine, msg.RunID, StepSaveSummary, func(ctx context.Context) (bool, error) {
		if err := p.lifecycle.CommitSummary(ctx, msg.MeetingUID, summary); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

// parseTranscript decodes a line-delimited JSON transcript. A malformed
// line fails the whole parse: partial transcripts would produce misleading
// summaries.
func parseTranscript(raw string) ([]models.TranscriptItem, error) {
	var items []models.TranscriptItem
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item models.TranscriptItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, domain.NewValidationError(
				fmt.Sprintf("malformed transcript line %d", i+1), err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, domain.NewValidationError("transcript contains no entries")
	}
	return items, nil
}

// addSpeakers resolves speaker IDs to display names. Users and agents are
// looked up concurrently; a speaker matching neither is labeled Unknown.
func (p *TranscriptProcessor) addSpeakers(ctx context.Context, items []models.TranscriptItem) ([]models.SpeakerTranscriptItem, error) {
	var users []*models.User
	var agents []*models.Agent

	err := p.lookupPool.Run(ctx,
		func() error {
			var err error
			users, err = p.userRepository.ListAllUsers(ctx)
			return err
		},
		func() error {
			var err error
			agents, err = p.agentRepository.ListAllAgents(ctx)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users)+len(agents))
	for _, user := range users {
		names[user.UID] = user.Name
	}
	for _, agent := range agents {
		// Agents may appear in transcripts under either their own ID or
		// their platform user ID.
		names[agent.UID] = agent.Name
		names[agent.UserUID] = agent.Name
	}

	annotated := make([]models.SpeakerTranscriptItem, 0, len(items))
	unknown := 0
	for _, item := range items {
		name, found := names[item.SpeakerID]
		if !found || name == "" {
			name = models.UnknownSpeakerName
			unknown++
		}
		annotated = append(annotated, models.SpeakerTranscriptItem{
			TranscriptItem: item,
			Speaker:        name,
		})
	}

	if unknown > 0 {
		slog.WarnContext(ctx, "transcript has unresolved speakers", "unresolved_count", unknown)
	}
	return annotated, nil
}
