package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/queue"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

// keyedMutex serializes work per applicant without a global lock, so two
// concurrent scorer calls can never race on the same evaluation row while
// different applicants still evaluate in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*lockEntry)}
}

func (k *keyedMutex) lock(key uuid.UUID) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// EvaluationWorker consumes evaluation tasks. It is the idempotency point
// for duplicate fan-in triggers: every delivery converges on the single
// evaluation row keyed by applicant, and a task for an already completed
// evaluation re-scores and overwrites, since transcripts may have changed
// via a retake.
type EvaluationWorker struct {
	tasks       queue.Queue
	evaluations repositories.EvaluationRepository
	answers     repositories.VideoAnswerRepository
	applicants  repositories.ApplicantRepository
	scorer      ScorerService
	log         *zap.Logger
	concurrency int
	taskTimeout time.Duration

	perApplicant *keyedMutex
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewEvaluationWorker(
	tasks queue.Queue,
	evaluations repositories.EvaluationRepository,
	answers repositories.VideoAnswerRepository,
	applicants repositories.ApplicantRepository,
	scorer ScorerService,
	log *zap.Logger,
	concurrency int,
	taskTimeout time.Duration,
) *EvaluationWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EvaluationWorker{
		tasks:        tasks,
		evaluations:  evaluations,
		answers:      answers,
		applicants:   applicants,
		scorer:       scorer,
		log:          log.Named("evaluation-worker"),
		concurrency:  concurrency,
		taskTimeout:  taskTimeout,
		perApplicant: newKeyedMutex(),
		stopChan:     make(chan struct{}),
	}
}

func (w *EvaluationWorker) Start(ctx context.Context) {
	w.log.Info("starting evaluation worker pool", zap.Int("concurrency", w.concurrency))
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

func (w *EvaluationWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.log.Info("evaluation worker pool stopped")
}

func (w *EvaluationWorker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.tasks.Dequeue(ctx, queue.KindEvaluation)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		w.handle(ctx, log, task)
	}
}

func (w *EvaluationWorker) handle(ctx context.Context, log *zap.Logger, task *queue.Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("evaluation task panicked", zap.String("task_id", task.ID), zap.Any("panic", r))
			_ = w.tasks.Ack(ctx, task)
		}
	}()

	var job queue.EvaluationTask
	if err := task.Decode(&job); err != nil {
		log.Error("dropping undecodable task", zap.String("task_id", task.ID), zap.Error(err))
		_ = w.tasks.Ack(ctx, task)
		return
	}

	err := w.process(ctx, job)
	switch {
	case err == nil:
		_ = w.tasks.Ack(ctx, task)
	case apperrors.IsKind(err, apperrors.KindScoring):
		// Already durably recorded as failed on the evaluation row.
		log.Warn("evaluation failed",
			zap.String("applicant_id", job.ApplicantID.String()),
			zap.Error(err),
		)
		_ = w.tasks.Ack(ctx, task)
	default:
		log.Error("evaluation task hit infrastructure error, requeueing",
			zap.String("applicant_id", job.ApplicantID.String()),
			zap.Error(err),
		)
		_ = w.tasks.Nack(ctx, task)
	}
}

func (w *EvaluationWorker) process(ctx context.Context, job queue.EvaluationTask) error {
	unlock := w.perApplicant.lock(job.ApplicantID)
	defer unlock()

	if _, err := w.evaluations.UpsertProcessing(job.ApplicantID); err != nil {
		return err
	}

	transcripts, err := w.answers.FindTranscriptsByApplicant(job.ApplicantID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	result, serr := w.scorer.Evaluate(callCtx, transcripts)
	cancel()
	if serr != nil {
		if ferr := w.evaluations.MarkFailed(job.ApplicantID, serr.Error()); ferr != nil {
			return ferr
		}
		if apperrors.IsKind(serr, apperrors.KindScoring) {
			return serr
		}
		return apperrors.Wrap(apperrors.KindScoring, serr, "scoring of applicant %s failed", job.ApplicantID)
	}

	if err := w.evaluations.CompleteResult(job.ApplicantID, result.TotalScore, result.Breakdown, result.Comment); err != nil {
		return err
	}
	if err := w.applicants.AdvanceStatus(job.ApplicantID, models.ApplicantEvaluated); err != nil {
		return err
	}

	w.log.Info("evaluation completed",
		zap.String("applicant_id", job.ApplicantID.String()),
		zap.Int("total_score", result.TotalScore),
	)
	return nil
}
