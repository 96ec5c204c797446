// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/converge-ai/converge-meeting-service/internal/domain"
	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
	"github.com/converge-ai/converge-meeting-service/internal/logging"
	"github.com/converge-ai/converge-meeting-service/pkg/concurrent"
)

// NatsStepRepository is the NATS KV store repository for pipeline step
// records. Records are msgpack-encoded: step outputs are opaque byte blobs
// and the records are written once per step, so a compact binary encoding
// is preferred over JSON here.
type NatsStepRepository struct {
	steps      INatsKeyValue
	kb         *KeyBuilder
	deletePool *concurrent.WorkerPool
}

// NewNatsStepRepository creates a new NATS KV store repository for step records.
func NewNatsStepRepository(steps INatsKeyValue) *NatsStepRepository {
	return &NatsStepRepository{
		steps:      steps,
		kb:         NewKeyBuilder(""),
		deletePool: concurrent.NewWorkerPool(4),
	}
}

// IsReady checks if the repository is ready for use
func (r *NatsStepRepository) IsReady() bool {
	return r.steps != nil
}

func (r *NatsStepRepository) GetStep(ctx context.Context, runID, stepName string) (*models.StepRecord, error) {
	key := r.kb.StepKey(runID, stepName)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "nats.kv.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "nats"),
			attribute.String("db.operation", "get"),
			attribute.String("db.nats.key", key),
			attribute.String("db.nats.entity", "step"),
		),
	)
	defer span.End()

	if !r.IsReady() {
		err := domain.NewUnavailableError("step repository is not available")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entry, err := r.steps.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			err = domain.NewNotFoundError(
				fmt.Sprintf("step '%s' for run '%s' not found", stepName, runID), err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		slog.ErrorContext(ctx, "error getting step record from NATS KV",
			logging.ErrKey, err, "run_id", runID, "step_name", stepName)
		err = domain.NewInternalError("failed to retrieve step record from store", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var record models.StepRecord
	if err := msgpack.Unmarshal(entry.Value(), &record); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling step record",
			logging.ErrKey, err, "run_id", runID, "step_name", stepName)
		err = domain.NewInternalError("failed to unmarshal step record", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &record, nil
}

func (r *NatsStepRepository) PutStep(ctx context.Context, record *models.StepRecord) error {
	key := r.kb.StepKey(record.RunID, record.StepName)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "nats.kv.put",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "nats"),
			attribute.String("db.operation", "put"),
			attribute.String("db.nats.key", key),
			attribute.String("db.nats.entity", "step"),
		),
	)
	defer span.End()

	if !r.IsReady() {
		err := domain.NewUnavailableError("step repository is not available")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	data, err := msgpack.Marshal(record)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling step record",
			logging.ErrKey, err, "run_id", record.RunID, "step_name", record.StepName)
		err = domain.NewInternalError("failed to marshal step record", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := r.steps.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, "error putting step record into NATS KV",
			logging.ErrKey, err, "run_id", record.RunID, "step_name", record.StepName)
		err = domain.NewInternalError("failed to store step record", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteRun removes all step records of a run. Used to clean up the step
// log once a run has fully completed.
func (r *NatsStepRepository) DeleteRun(ctx context.Context, runID string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "nats.kv.delete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "nats"),
			attribute.String("db.operation", "delete"),
			attribute.String("db.nats.entity", "step"),
		),
	)
	defer span.End()

	if !r.IsReady() {
		err := domain.NewUnavailableError("step repository is not available")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	runPrefix, err := r.kb.EncodeKey(fmt.Sprintf("%s/%s", KeyPrefixStep, runID))
	if err != nil {
		err = domain.NewInternalError("failed to encode run key prefix", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	keysLister, err := r.steps.ListKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing step record keys",
			logging.ErrKey, err, "run_id", runID)
		err = domain.NewInternalError("failed to list step records", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	deletes := []func() error{}
	for key := range keysLister.Keys() {
		if !strings.HasPrefix(key, runPrefix+".") {
			continue
		}
		deletes = append(deletes, func() error {
			if err := r.steps.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
				slog.ErrorContext(ctx, "error deleting step record",
					logging.ErrKey, err, "run_id", runID, "key", key)
				return err
			}
			return nil
		})
	}

	// Every surviving record stays resumable, so a partial failure must
	// not stop the remaining deletes.
	if errs := r.deletePool.RunAll(ctx, deletes...); len(errs) > 0 {
		err := domain.NewInternalError("failed to delete step records", errs[0])
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
