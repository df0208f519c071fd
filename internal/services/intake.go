package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/queue"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

// IntakeService is the only synchronous entry point into the pipeline. A
// submission stores the video bytes, durably upserts the answer row and
// only then enqueues the transcription task, so a worker that dequeues the
// task always finds a matching row.
type IntakeService interface {
	SubmitAnswer(ctx context.Context, applicantID, questionID uuid.UUID, filename string, video io.Reader) (*models.VideoAnswer, error)
	CompleteSubmission(ctx context.Context, applicantID uuid.UUID) error
}

type intakeService struct {
	applicants repositories.ApplicantRepository
	questions  repositories.QuestionRepository
	answers    repositories.VideoAnswerRepository
	media      MediaStore
	tasks      queue.Queue
	log        *zap.Logger
}

func NewIntakeService(
	applicants repositories.ApplicantRepository,
	questions repositories.QuestionRepository,
	answers repositories.VideoAnswerRepository,
	media MediaStore,
	tasks queue.Queue,
	log *zap.Logger,
) IntakeService {
	return &intakeService{
		applicants: applicants,
		questions:  questions,
		answers:    answers,
		media:      media,
		tasks:      tasks,
		log:        log.Named("intake"),
	}
}

var allowedVideoExtensions = map[string]bool{
	".webm": true,
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
}

func (s *intakeService) SubmitAnswer(ctx context.Context, applicantID, questionID uuid.UUID, filename string, video io.Reader) (*models.VideoAnswer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedVideoExtensions[ext] {
		return nil, apperrors.Validation("unsupported video extension %q", ext)
	}

	if _, err := s.applicants.FindByID(applicantID); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Validation("applicant %s does not exist", applicantID)
		}
		return nil, err
	}
	if _, err := s.questions.FindByID(questionID); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Validation("question %s does not exist", questionID)
		}
		return nil, err
	}

	locator, err := s.media.Put(ctx, video, applicantID, questionID, filename)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.Upsert(applicantID, questionID, locator)
	if err != nil {
		return nil, err
	}

	task := queue.TranscriptionTask{
		AnswerID:    answer.ID,
		ApplicantID: applicantID,
		QuestionID:  questionID,
		VideoURL:    locator,
	}
	if err := s.tasks.Enqueue(ctx, queue.KindTranscription, task); err != nil {
		// The answer row stays pending; a later retake or operator
		// re-enqueue picks it up.
		return nil, err
	}

	s.log.Info("video answer submitted",
		zap.String("answer_id", answer.ID.String()),
		zap.String("applicant_id", applicantID.String()),
		zap.String("question_id", questionID.String()),
	)
	return answer, nil
}

func (s *intakeService) CompleteSubmission(_ context.Context, applicantID uuid.UUID) error {
	if _, err := s.applicants.FindByID(applicantID); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.Validation("applicant %s does not exist", applicantID)
		}
		return err
	}
	return s.applicants.AdvanceStatus(applicantID, models.ApplicantVideoSubmitted)
}
