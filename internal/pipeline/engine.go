// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

// Package pipeline runs durable, resumable processing pipelines. Each step
// persists its output under the run ID, so a crashed or redelivered run
// replays completed steps from the store instead of executing them again.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
)

// Default retry configuration for pipeline runs.
const (
	DefaultMaxAttempts     = 4
	DefaultInitialInterval = 2 * time.Second
	DefaultMaxInterval     = 1 * time.Minute
)

// Engine executes pipeline runs with per-step memoization and run-level
// retries. Validation failures are permanent: retrying a malformed
// transcript will not fix it.
type Engine struct {
	steps           domain.StepRepository
	maxAttempts     uint
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewEngine creates a new pipeline engine.
func NewEngine(steps domain.StepRepository) *Engine {
	return &Engine{
		steps:           steps,
		maxAttempts:     DefaultMaxAttempts,
		initialInterval: DefaultInitialInterval,
		maxInterval:     DefaultMaxInterval,
	}
}

// WithRetry overrides the retry configuration, used in tests.
func (e *Engine) WithRetry(maxAttempts uint, initialInterval, maxInterval time.Duration) *Engine {
	e.maxAttempts = maxAttempts
	e.initialInterval = initialInterval
	e.maxInterval = maxInterval
	return e
}

// Execute runs fn with exponential-backoff retries. Steps completed in an
// earlier attempt are replayed from the store by RunStep, so a retry only
// redoes the step that failed and those after it.
func (e *Engine) Execute(ctx context.Context, runID string, fn func(ctx context.Context) error) error {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			slog.InfoContext(ctx, "retrying pipeline run", "run_id", runID, "attempt", attempt)
		}

		err := fn(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if domain.GetErrorType(err) == domain.ErrorTypeValidation {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = e.initialInterval
	expBackoff.MaxInterval = e.maxInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(e.maxAttempts),
	)
	if err != nil {
		// A permanently failed run needs operator intervention; nothing
		// retries it after this point.
		slog.ErrorContext(ctx, "pipeline run failed",
			logging.ErrKey, err, logging.PriorityCritical(), "run_id", runID, "attempts", attempt)
		return err
	}

	slog.InfoContext(ctx, "pipeline run completed", "run_id", runID, "attempts", attempt)
	return nil
}

// CleanupRun deletes the memoized step records of a run. Only call it
// after the run has fully completed; a redelivered message then re-runs
// the pipeline from scratch, which is safe but wasted work.
func (e *Engine) CleanupRun(ctx context.Context, runID string) error {
	return e.steps.DeleteRun(ctx, runID)
}

// RunStep executes one named step of a run, memoizing its output. If the
// step already has a stored record for this run, the stored output is
// returned and fn is not called.
func RunStep[T any](ctx context.Context, e *Engine, runID, stepName string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	record, err := e.steps.GetStep(ctx, runID, stepName)
	if err == nil {
		var output T
		if err := json.Unmarshal(record.Output, &output); err != nil {
			return zero, domain.NewInternalError(
				fmt.Sprintf("failed to decode stored output of step %q", stepName), err)
		}
		slog.DebugContext(ctx, "replaying memoized pipeline step",
			"run_id", runID, "step_name", stepName)
		return output, nil
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return zero, err
	}

	output, err := fn(ctx)
	if err != nil {
		return zero, fmt.Errorf("step %q failed: %w", stepName, err)
	}

	data, err := json.Marshal(output)
	if err != nil {
		return zero, domain.NewInternalError(
			fmt.Sprintf("failed to encode output of step %q", stepName), err)
	}

	if err := e.steps.PutStep(ctx, &models.StepRecord{
		RunID:       runID,
		StepName:    stepName,
		Output:      data,
		CompletedAt: time.Now().UTC(),
	}); err != nil {
		return zero, err
	}

	slog.DebugContext(ctx, "pipeline step completed",
		"run_id", runID, "step_name", stepName)
	return output, nil
}
