// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name        string
		workerCount int
		expected    int
	}{
		{name: "positive worker count", workerCount: 4, expected: 4},
		{name: "zero worker count defaults to one", workerCount: 0, expected: 1},
		{name: "negative worker count defaults to one", workerCount: -3, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.workerCount)
			assert.Equal(t, tt.expected, wp.workerCount)
		})
	}
}

func TestWorkerPoolRun(t *testing.T) {
	t.Run("runs all functions", func(t *testing.T) {
		wp := NewWorkerPool(2)
		var counter atomic.Int32

		fns := make([]func() error, 10)
		for i := range fns {
			fns[i] = func() error {
				counter.Add(1)
				return nil
			}
		}

		err := wp.Run(context.Background(), fns...)
		assert.NoError(t, err)
		assert.Equal(t, int32(10), counter.Load())
	})

	t.Run("returns first error", func(t *testing.T) {
		wp := NewWorkerPool(1)
		wantErr := errors.New("boom")

		err := wp.Run(context.Background(),
			func() error { return nil },
			func() error { return wantErr },
		)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("no functions is a no-op", func(t *testing.T) {
		wp := NewWorkerPool(2)
		assert.NoError(t, wp.Run(context.Background()))
	})
}

func TestWorkerPoolRunAll(t *testing.T) {
	t.Run("collects all errors without cancelling", func(t *testing.T) {
		wp := NewWorkerPool(2)
		var counter atomic.Int32

		errs := wp.RunAll(context.Background(),
			func() error { counter.Add(1); return errors.New("first") },
			func() error { counter.Add(1); return nil },
			func() error { counter.Add(1); return errors.New("second") },
		)

		assert.Len(t, errs, 2)
		assert.Equal(t, int32(3), counter.Load())
	})

	t.Run("no errors yields nil slice", func(t *testing.T) {
		wp := NewWorkerPool(2)
		errs := wp.RunAll(context.Background(), func() error { return nil })
		assert.Nil(t, errs)
	})
}
