package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/utils"

	"go.uber.org/zap"
)

// Queue accepts recompute tasks keyed by recipe id. Delivery is
// at-least-once with no ordering guarantee; handlers must be idempotent.
// Enqueue never blocks the caller.
type Queue interface {
	Enqueue(ctx context.Context, recipeID uint) error
}

// Handler executes one recompute task. It reads current persisted state
// only; the task payload carries nothing but the recipe id.
type Handler func(ctx context.Context, recipeID uint) error

var ErrQueueFull = errors.New("recompute queue is full")

const defaultBuffer = 256

// MemoryQueue is the in-process transport: a buffered channel drained by a
// fixed worker pool. Tasks that keep failing are dropped after the retry
// budget; the next ingredient edit re-triggers propagation anyway.
type MemoryQueue struct {
	tasks      chan uint
	handler    Handler
	workers    int
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewMemoryQueue(workers, maxRetries int, handler Handler, logger *zap.Logger) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	return &MemoryQueue{
		tasks:      make(chan uint, defaultBuffer),
		handler:    handler,
		workers:    workers,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger,
	}
}

func (q *MemoryQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for id := range q.tasks {
				runTask(context.Background(), q.handler, id, q.maxRetries, q.backoff, q.logger)
			}
		}()
	}
}

// Stop drains outstanding tasks and waits for the workers to finish.
func (q *MemoryQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}

func (q *MemoryQueue) Enqueue(_ context.Context, recipeID uint) error {
	select {
	case q.tasks <- recipeID:
		utils.RecomputeEnqueued.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// runTask runs the handler with bounded retries. Shared by both transports.
func runTask(ctx context.Context, handler Handler, recipeID uint, maxRetries int, backoff time.Duration, logger *zap.Logger) {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
		if err = safeHandle(ctx, handler, recipeID); err == nil {
			utils.RecomputeProcessed.WithLabelValues("ok").Inc()
			return
		}
		logger.Warn("recompute_task_failed",
			zap.Uint("recipe_id", recipeID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	utils.RecomputeProcessed.WithLabelValues("dropped").Inc()
	logger.Error("recompute_task_dropped",
		zap.Uint("recipe_id", recipeID),
		zap.Int("attempts", maxRetries+1),
		zap.Error(err),
	)
}

// safeHandle keeps a panicking handler from taking the worker down.
func safeHandle(ctx context.Context, handler Handler, recipeID uint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("recompute handler panicked")
		}
	}()
	return handler(ctx, recipeID)
}
