// Package pool runs tasks on a fixed number of workers and hands results
// back in submission order.
//
// Every task owns one index-keyed result slot. Workers write only to their
// own slot; a single collecting goroutine walks the slots in ascending
// index and blocks on each until it is filled. Completion order therefore
// never leaks into the output.
package pool

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/muurk/argus/internal/logging"
)

// Pool is a bounded worker pool
type Pool struct {
	size    int
	workers *ants.Pool
}

// New creates a pool with exactly size workers
func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}

	workers, err := ants.NewPool(size, ants.WithLogger(antsLogger{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Pool{size: size, workers: workers}, nil
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Running returns the number of workers currently executing a task.
// Tests use it to check the concurrency bound.
func (p *Pool) Running() int {
	return p.workers.Running()
}

// Release stops the workers. The pool cannot be used afterwards.
func (p *Pool) Release() {
	p.workers.Release()
}

type slot[R any] struct {
	value R
	done  chan struct{}
}

// Task computes the result for the item at index i
type Task[T, R any] func(ctx context.Context, i int, item T) R

// Stream runs task for every item and calls emit once per item, in item
// order, as soon as that item and all items before it have completed.
// A task that panics yields the zero value of R.
//
// Submission blocks while all workers are busy. If the pool rejects a
// submission, results for the items already submitted are still emitted
// and the rejection is returned.
func Stream[T, R any](ctx context.Context, p *Pool, items []T, task Task[T, R], emit func(i int, result R)) error {
	slots := make([]slot[R], len(items))
	for i := range slots {
		slots[i].done = make(chan struct{})
	}

	submitted := 0
	var submitErr error
	for i, item := range items {
		err := p.workers.Submit(func() {
			defer close(slots[i].done)
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Task panicked", zap.Int("index", i), zap.Any("panic", r))
				}
			}()
			slots[i].value = task(ctx, i, item)
		})
		if err != nil {
			submitErr = fmt.Errorf("failed to submit task %d: %w", i, err)
			break
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		<-slots[i].done
		if emit != nil {
			emit(i, slots[i].value)
		}
	}

	return submitErr
}

// Map runs task for every item and returns the results in item order
func Map[T, R any](ctx context.Context, p *Pool, items []T, task Task[T, R]) ([]R, error) {
	results := make([]R, len(items))
	err := Stream(ctx, p, items, task, func(i int, r R) {
		results[i] = r
	})
	return results, err
}

// antsLogger routes ants' internal messages into the zap logger
type antsLogger struct{}

func (antsLogger) Printf(format string, args ...any) {
	logging.Debug(fmt.Sprintf(format, args...), zap.String("component", "pool"))
}
