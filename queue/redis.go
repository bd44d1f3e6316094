package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisKey = "recompute:recipes"

// RedisQueue is the multi-process transport: LPUSH on the write side, a
// BRPOP consumer loop per worker on the read side. Same at-least-once
// contract as MemoryQueue.
type RedisQueue struct {
	client     *redis.Client
	key        string
	handler    Handler
	workers    int
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisQueue(addr string, workers, maxRetries int, handler Handler, logger *zap.Logger) *RedisQueue {
	if workers <= 0 {
		workers = 1
	}
	return &RedisQueue{
		client:     redis.NewClient(&redis.Options{Addr: addr}),
		key:        defaultRedisKey,
		handler:    handler,
		workers:    workers,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger,
	}
}

func (q *RedisQueue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.consume(ctx)
	}
}

func (q *RedisQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	_ = q.client.Close()
}

func (q *RedisQueue) Enqueue(ctx context.Context, recipeID uint) error {
	if err := q.client.LPush(ctx, q.key, strconv.FormatUint(uint64(recipeID), 10)).Err(); err != nil {
		return err
	}
	utils.RecomputeEnqueued.Inc()
	return nil
}

func (q *RedisQueue) consume(ctx context.Context) {
	defer q.wg.Done()
	for {
		res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				q.logger.Warn("recompute_brpop_failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		id, err := strconv.ParseUint(res[1], 10, 64)
		if err != nil {
			q.logger.Warn("recompute_bad_payload", zap.String("payload", res[1]))
			continue
		}
		runTask(ctx, q.handler, uint(id), q.maxRetries, q.backoff, q.logger)
	}
}
