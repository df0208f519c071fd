package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue used by tests and single-process
// development runs. Delivery semantics match the Redis implementation:
// FIFO, nacked tasks are redelivered first.
type MemoryQueue struct {
	mu          sync.Mutex
	pending     map[Kind][]*Task
	pollTimeout time.Duration
}

func NewMemoryQueue(pollTimeout time.Duration) *MemoryQueue {
	if pollTimeout <= 0 {
		pollTimeout = 50 * time.Millisecond
	}
	return &MemoryQueue{
		pending:     make(map[Kind][]*Task),
		pollTimeout: pollTimeout,
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, kind Kind, payload interface{}) error {
	task, err := newTask(kind, payload)
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.pending[kind] = append(q.pending[kind], task)
	q.mu.Unlock()
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context, kind Kind) (*Task, error) {
	deadline := time.Now().Add(q.pollTimeout)
	for {
		q.mu.Lock()
		if tasks := q.pending[kind]; len(tasks) > 0 {
			task := tasks[0]
			q.pending[kind] = tasks[1:]
			q.mu.Unlock()
			return task, nil
		}
		q.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) Ack(context.Context, *Task) error {
	return nil
}

func (q *MemoryQueue) Nack(_ context.Context, task *Task) error {
	q.mu.Lock()
	q.pending[task.Kind] = append([]*Task{task}, q.pending[task.Kind]...)
	q.mu.Unlock()
	return nil
}

// Len reports the number of pending tasks for a kind.
func (q *MemoryQueue) Len(kind Kind) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[kind])
}

// Snapshot decodes every pending payload of a kind without consuming it.
func (q *MemoryQueue) Snapshot(kind Kind) []json.RawMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]json.RawMessage, 0, len(q.pending[kind]))
	for _, t := range q.pending[kind] {
		out = append(out, t.Payload)
	}
	return out
}
