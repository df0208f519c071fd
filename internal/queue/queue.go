// Package queue provides the durable, at-least-once work queue that
// decouples the intake path from the transcription and evaluation workers.
// Consumers must be idempotent: a task may be delivered more than once.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTranscription Kind = "transcription"
	KindEvaluation    Kind = "evaluation"
)

// TranscriptionTask carries everything the transcription worker needs to
// claim an answer. VideoURL is the locator captured at enqueue time; the
// worker compares it against the current row to detect staleness.
type TranscriptionTask struct {
	AnswerID    uuid.UUID `json:"answer_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	VideoURL    string    `json:"video_url"`
}

type EvaluationTask struct {
	ApplicantID uuid.UUID `json:"applicant_id"`
}

// Task is the wire envelope stored in the queue.
type Task struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`

	// raw is the exact queue entry, kept so Ack/Nack can address it.
	raw string
}

func (t *Task) Decode(v interface{}) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s task payload: %w", t.Kind, err)
	}
	return nil
}

func newTask(kind Kind, payload interface{}) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s task payload: %w", kind, err)
	}
	return &Task{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Queue is the at-least-once task queue contract. Dequeue blocks for at
// most the implementation's poll timeout and returns (nil, nil) when no
// task is available. A dequeued task is invisible to other consumers until
// it is acked (done) or nacked (returned for redelivery).
type Queue interface {
	Enqueue(ctx context.Context, kind Kind, payload interface{}) error
	Dequeue(ctx context.Context, kind Kind) (*Task, error)
	Ack(ctx context.Context, task *Task) error
	Nack(ctx context.Context, task *Task) error
}
