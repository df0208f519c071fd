package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a reliable-list queue: enqueue pushes onto a pending list,
// dequeue atomically moves the oldest entry to a per-kind processing list,
// ack removes it there and nack moves it back for redelivery. Entries that
// die with a crashed worker remain visible on the processing list for
// operators.
type RedisQueue struct {
	client      *redis.Client
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{client: client, pollTimeout: pollTimeout}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

func pendingKey(kind Kind) string {
	return fmt.Sprintf("queue:%s:pending", kind)
}

func processingKey(kind Kind) string {
	return fmt.Sprintf("queue:%s:processing", kind)
}

func (q *RedisQueue) Enqueue(ctx context.Context, kind Kind, payload interface{}) error {
	task, err := newTask(kind, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task envelope: %w", err)
	}
	if err := q.client.LPush(ctx, pendingKey(kind), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", kind, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, kind Kind) (*Task, error) {
	raw, err := q.client.BRPopLPush(ctx, pendingKey(kind), processingKey(kind), q.pollTimeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue %s task: %w", kind, err)
	}

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		// A corrupt entry can never be handled; drop it rather than wedge
		// the queue.
		q.client.LRem(ctx, processingKey(kind), 1, raw)
		return nil, fmt.Errorf("failed to decode %s task envelope: %w", kind, err)
	}
	task.raw = raw
	return &task, nil
}

func (q *RedisQueue) Ack(ctx context.Context, task *Task) error {
	if err := q.client.LRem(ctx, processingKey(task.Kind), 1, task.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack %s task %s: %w", task.Kind, task.ID, err)
	}
	return nil
}

func (q *RedisQueue) Nack(ctx context.Context, task *Task) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey(task.Kind), 1, task.raw)
	pipe.RPush(ctx, pendingKey(task.Kind), task.raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack %s task %s: %w", task.Kind, task.ID, err)
	}
	return nil
}

// PendingCount reports queue depth for health reporting.
func (q *RedisQueue) PendingCount(ctx context.Context, kind Kind) (int64, error) {
	return q.client.LLen(ctx, pendingKey(kind)).Result()
}
