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

// TranscriptionWorker consumes transcription tasks: it claims the answer
// row, calls the transcript generator and, when the applicant's answer set
// becomes fully transcribed, enqueues the evaluation task. Tasks are
// independent per (applicant, question), so the pool runs several at once.
type TranscriptionWorker struct {
	tasks       queue.Queue
	answers     repositories.VideoAnswerRepository
	questions   repositories.QuestionRepository
	transcriber TranscriptionService
	log         *zap.Logger
	concurrency int
	taskTimeout time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTranscriptionWorker(
	tasks queue.Queue,
	answers repositories.VideoAnswerRepository,
	questions repositories.QuestionRepository,
	transcriber TranscriptionService,
	log *zap.Logger,
	concurrency int,
	taskTimeout time.Duration,
) *TranscriptionWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &TranscriptionWorker{
		tasks:       tasks,
		answers:     answers,
		questions:   questions,
		transcriber: transcriber,
		log:         log.Named("transcription-worker"),
		concurrency: concurrency,
		taskTimeout: taskTimeout,
		stopChan:    make(chan struct{}),
	}
}

func (w *TranscriptionWorker) Start(ctx context.Context) {
	w.log.Info("starting transcription worker pool", zap.Int("concurrency", w.concurrency))
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

func (w *TranscriptionWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.log.Info("transcription worker pool stopped")
}

func (w *TranscriptionWorker) run(ctx context.Context, workerID int) {
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

		task, err := w.tasks.Dequeue(ctx, queue.KindTranscription)
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

// handle classifies the outcome of one task execution. Domain failures are
// recorded on the answer row and acked; only infrastructure failures that
// prevented any durable write are nacked for redelivery. No outcome ever
// stops the pool.
func (w *TranscriptionWorker) handle(ctx context.Context, log *zap.Logger, task *queue.Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("transcription task panicked", zap.String("task_id", task.ID), zap.Any("panic", r))
			_ = w.tasks.Ack(ctx, task)
		}
	}()

	var job queue.TranscriptionTask
	if err := task.Decode(&job); err != nil {
		log.Error("dropping undecodable task", zap.String("task_id", task.ID), zap.Error(err))
		_ = w.tasks.Ack(ctx, task)
		return
	}

	err := w.process(ctx, job)
	switch {
	case err == nil:
		_ = w.tasks.Ack(ctx, task)
	case apperrors.IsKind(err, apperrors.KindStaleTask), apperrors.IsKind(err, apperrors.KindNotFound):
		log.Debug("discarding stale transcription task",
			zap.String("answer_id", job.AnswerID.String()),
			zap.Error(err),
		)
		_ = w.tasks.Ack(ctx, task)
	case apperrors.IsKind(err, apperrors.KindTranscription):
		// Already durably recorded as failed on the answer row.
		log.Warn("transcription failed",
			zap.String("answer_id", job.AnswerID.String()),
			zap.Error(err),
		)
		_ = w.tasks.Ack(ctx, task)
	default:
		log.Error("transcription task hit infrastructure error, requeueing",
			zap.String("answer_id", job.AnswerID.String()),
			zap.Error(err),
		)
		_ = w.tasks.Nack(ctx, task)
	}
}

func (w *TranscriptionWorker) process(ctx context.Context, job queue.TranscriptionTask) error {
	answer, err := w.answers.FindByID(job.AnswerID)
	if err != nil {
		return err
	}

	// A retake supersedes the task: the row already points at a newer
	// locator, so this task's result must never land.
	if answer.VideoURL != job.VideoURL {
		return apperrors.New(apperrors.KindStaleTask,
			"answer %s now holds a newer locator", job.AnswerID)
	}

	// Redelivered task for an answer that already finished with this very
	// locator: skip the generator call, but still re-check the fan-in in
	// case the previous delivery crashed before enqueueing evaluation.
	if answer.TranscriptionStatus == models.TranscriptionCompleted && answer.Transcript != nil {
		return w.maybeEnqueueEvaluation(ctx, job.ApplicantID)
	}

	// First durable write, before the external call: a crash mid-call
	// leaves an observable processing row rather than silent loss.
	claimed, err := w.answers.MarkProcessing(job.AnswerID, job.VideoURL)
	if err != nil {
		return err
	}
	if !claimed {
		return apperrors.New(apperrors.KindStaleTask,
			"answer %s was retaken before processing started", job.AnswerID)
	}

	callCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	transcript, terr := w.transcriber.Transcribe(callCtx, job.VideoURL)
	cancel()
	if terr != nil {
		if _, ferr := w.answers.MarkFailed(job.AnswerID, job.VideoURL); ferr != nil {
			return ferr
		}
		if apperrors.IsKind(terr, apperrors.KindTranscription) {
			return terr
		}
		return apperrors.Wrap(apperrors.KindTranscription, terr, "transcription of answer %s failed", job.AnswerID)
	}

	landed, err := w.answers.Complete(job.AnswerID, job.VideoURL, transcript)
	if err != nil {
		return err
	}
	if !landed {
		return apperrors.New(apperrors.KindStaleTask,
			"answer %s was retaken while transcribing", job.AnswerID)
	}

	w.log.Info("transcription completed",
		zap.String("answer_id", job.AnswerID.String()),
		zap.String("applicant_id", job.ApplicantID.String()),
	)

	return w.maybeEnqueueEvaluation(ctx, job.ApplicantID)
}

// maybeEnqueueEvaluation is the fan-in point. The predicate is computed
// from a fresh read because sibling transcriptions complete concurrently
// and the last one to finish must be the one that triggers evaluation.
// Duplicate enqueues under races are harmless; the evaluation worker is
// idempotent per applicant.
func (w *TranscriptionWorker) maybeEnqueueEvaluation(ctx context.Context, applicantID uuid.UUID) error {
	completed, err := w.answers.CountCompletedByApplicant(applicantID)
	if err != nil {
		return err
	}
	total, err := w.questions.Count()
	if err != nil {
		return err
	}
	if total == 0 || completed < total {
		return nil
	}

	if err := w.tasks.Enqueue(ctx, queue.KindEvaluation, queue.EvaluationTask{ApplicantID: applicantID}); err != nil {
		return err
	}
	w.log.Info("all transcriptions complete, evaluation enqueued",
		zap.String("applicant_id", applicantID.String()),
		zap.Int64("answers", completed),
	)
	return nil
}
