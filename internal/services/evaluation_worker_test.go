package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/queue"
)

type evaluationFixture struct {
	worker      *EvaluationWorker
	tasks       *queue.MemoryQueue
	applicants  *fakeApplicantRepo
	questions   *fakeQuestionRepo
	answers     *fakeAnswerRepo
	evaluations *fakeEvaluationRepo
	scorer      *fakeScorer
}

func newEvaluationFixture(t *testing.T, concurrency int) *evaluationFixture {
	t.Helper()
	questions := newFakeQuestionRepo(3)
	answers := newFakeAnswerRepo(questions)
	applicants := newFakeApplicantRepo()
	evaluations := newFakeEvaluationRepo()
	scorer := &fakeScorer{}
	tasks := queue.NewMemoryQueue(20 * time.Millisecond)

	worker := NewEvaluationWorker(
		tasks,
		evaluations,
		answers,
		applicants,
		scorer,
		zap.NewNop(),
		concurrency,
		time.Second,
	)
	return &evaluationFixture{
		worker:      worker,
		tasks:       tasks,
		applicants:  applicants,
		questions:   questions,
		answers:     answers,
		evaluations: evaluations,
		scorer:      scorer,
	}
}

// seedApplicant creates an applicant whose whole answer set is already
// transcribed, the state in which the fan-in fires.
func (f *evaluationFixture) seedApplicant(status models.ApplicantStatus) queue.EvaluationTask {
	applicantID := f.applicants.add(status)
	for i, questionID := range f.questions.ids() {
		transcript := []string{
			"I applied because I believe in my idea.",
			"My plan is a subscription box for creators.",
			"I want to build the largest creator community in Japan.",
		}[i]
		f.answers.addCompleted(applicantID, questionID, transcript)
	}
	return queue.EvaluationTask{ApplicantID: applicantID}
}

func TestEvaluationProcessCompletesAndAdvancesStatus(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)

	require.NoError(t, f.worker.process(context.Background(), job))

	eval := f.evaluations.get(job.ApplicantID)
	require.NotNil(t, eval)
	assert.Equal(t, models.EvaluationCompleted, eval.EvaluationStatus)
	require.NotNil(t, eval.TotalScore)
	assert.Equal(t, 82, *eval.TotalScore)
	require.NotNil(t, eval.AIComment)

	assert.Equal(t, models.ApplicantEvaluated, f.applicants.status(job.ApplicantID))
}

func TestEvaluationScoringFailureRecordedOnRow(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)
	f.scorer.err = apperrors.New(apperrors.KindScoring, "response missing total_score")

	err := f.worker.process(context.Background(), job)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindScoring))

	eval := f.evaluations.get(job.ApplicantID)
	require.NotNil(t, eval)
	assert.Equal(t, models.EvaluationFailed, eval.EvaluationStatus)
	require.NotNil(t, eval.ErrorMessage)
	assert.Nil(t, eval.TotalScore)

	// The pipeline axis does not advance on a failed evaluation.
	assert.Equal(t, models.ApplicantVideoSubmitted, f.applicants.status(job.ApplicantID))
}

func TestEvaluationDuplicateTasksConvergeOnOneRow(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)

	// At-least-once fan-in can trigger twice for the same applicant.
	require.NoError(t, f.worker.process(context.Background(), job))
	require.NoError(t, f.worker.process(context.Background(), job))

	assert.Equal(t, 1, f.evaluations.count())
	assert.Equal(t, 2, f.scorer.callCount(), "a duplicate task re-scores against current transcripts")
	assert.Equal(t, models.EvaluationCompleted, f.evaluations.get(job.ApplicantID).EvaluationStatus)
}

func TestEvaluationRetryAfterFailureClearsError(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)

	f.scorer.err = apperrors.New(apperrors.KindScoring, "malformed response")
	require.Error(t, f.worker.process(context.Background(), job))
	require.Equal(t, models.EvaluationFailed, f.evaluations.get(job.ApplicantID).EvaluationStatus)

	f.scorer.err = nil
	require.NoError(t, f.worker.process(context.Background(), job))

	eval := f.evaluations.get(job.ApplicantID)
	assert.Equal(t, models.EvaluationCompleted, eval.EvaluationStatus)
	assert.Nil(t, eval.ErrorMessage)
}

func TestEvaluationNeverRegressesManualDecision(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	// Admin already accepted this applicant; a late evaluation replay must
	// not pull the status back to evaluated.
	job := f.seedApplicant(models.ApplicantAccepted)

	require.NoError(t, f.worker.process(context.Background(), job))

	assert.Equal(t, models.ApplicantAccepted, f.applicants.status(job.ApplicantID))
	assert.Equal(t, models.EvaluationCompleted, f.evaluations.get(job.ApplicantID).EvaluationStatus)
}

func TestEvaluationHandleAcksScoringFailure(t *testing.T) {
	f := newEvaluationFixture(t, 1)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)
	f.scorer.err = apperrors.New(apperrors.KindScoring, "scorer unavailable")

	ctx := context.Background()
	require.NoError(t, f.tasks.Enqueue(ctx, queue.KindEvaluation, job))
	task, err := f.tasks.Dequeue(ctx, queue.KindEvaluation)
	require.NoError(t, err)
	require.NotNil(t, task)

	f.worker.handle(ctx, zap.NewNop(), task)
	assert.Equal(t, 0, f.tasks.Len(queue.KindEvaluation), "durably failed tasks are not redelivered")
}

func TestEvaluationConcurrentDuplicatesSerializePerApplicant(t *testing.T) {
	f := newEvaluationFixture(t, 2)
	job := f.seedApplicant(models.ApplicantVideoSubmitted)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.worker.process(context.Background(), job)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.evaluations.count())
	assert.Equal(t, models.EvaluationCompleted, f.evaluations.get(job.ApplicantID).EvaluationStatus)
	assert.Equal(t, models.ApplicantEvaluated, f.applicants.status(job.ApplicantID))
}

func TestEvaluationWorkerPoolDrainsQueue(t *testing.T) {
	f := newEvaluationFixture(t, 2)
	ctx := context.Background()

	jobs := []queue.EvaluationTask{
		f.seedApplicant(models.ApplicantVideoSubmitted),
		f.seedApplicant(models.ApplicantVideoSubmitted),
		f.seedApplicant(models.ApplicantVideoSubmitted),
	}
	for _, job := range jobs {
		require.NoError(t, f.tasks.Enqueue(ctx, queue.KindEvaluation, job))
	}

	f.worker.Start(ctx)
	require.Eventually(t, func() bool {
		return f.evaluations.count() == 3
	}, 2*time.Second, 10*time.Millisecond)
	f.worker.Stop()

	for _, job := range jobs {
		assert.Equal(t, models.EvaluationCompleted, f.evaluations.get(job.ApplicantID).EvaluationStatus)
		assert.Equal(t, models.ApplicantEvaluated, f.applicants.status(job.ApplicantID))
	}
}
