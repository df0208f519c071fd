package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

// ==========================
// In-Memory Repository Fakes
// ==========================

type fakeApplicantRepo struct {
	mu         sync.Mutex
	applicants map[uuid.UUID]*models.Applicant
}

func newFakeApplicantRepo() *fakeApplicantRepo {
	return &fakeApplicantRepo{applicants: make(map[uuid.UUID]*models.Applicant)}
}

func (r *fakeApplicantRepo) add(status models.ApplicantStatus) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.applicants[id] = &models.Applicant{
		ID:     id,
		Name:   "Test Applicant",
		Email:  fmt.Sprintf("%s@example.com", id),
		Status: status,
	}
	return id
}

func (r *fakeApplicantRepo) status(id uuid.UUID) models.ApplicantStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applicants[id].Status
}

func (r *fakeApplicantRepo) Create(applicant *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applicants[applicant.ID] = applicant
	return nil
}

func (r *fakeApplicantRepo) FindByID(id uuid.UUID) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant, ok := r.applicants[id]
	if !ok {
		return nil, apperrors.NotFound("applicant not found")
	}
	clone := *applicant
	return &clone, nil
}

func (r *fakeApplicantRepo) ListSummaries() ([]models.ApplicantSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ApplicantSummary, 0, len(r.applicants))
	for _, a := range r.applicants {
		out = append(out, models.ApplicantSummary{
			ID:     a.ID.String(),
			Name:   a.Name,
			Email:  a.Email,
			Status: string(a.Status),
		})
	}
	return out, nil
}

func (r *fakeApplicantRepo) AdvanceStatus(id uuid.UUID, target models.ApplicantStatus) error {
	predecessors := models.PipelinePredecessors(target)
	if len(predecessors) == 0 {
		return fmt.Errorf("status %s is not on the pipeline axis", target)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant, ok := r.applicants[id]
	if !ok {
		return nil
	}
	for _, prev := range predecessors {
		if applicant.Status == prev {
			applicant.Status = target
			return nil
		}
	}
	return nil
}

func (r *fakeApplicantRepo) SetDecision(id uuid.UUID, status models.ApplicantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant, ok := r.applicants[id]
	if !ok {
		return apperrors.NotFound("applicant not found")
	}
	applicant.Status = status
	return nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []models.Question
}

func newFakeQuestionRepo(n int) *fakeQuestionRepo {
	r := &fakeQuestionRepo{}
	for i := 0; i < n; i++ {
		r.questions = append(r.questions, models.Question{
			ID:                 uuid.New(),
			QuestionText:       fmt.Sprintf("Question %d", i+1),
			OrderNumber:        i + 1,
			IsRequired:         true,
			MaxDurationSeconds: 180,
		})
	}
	return r
}

func (r *fakeQuestionRepo) ids() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uuid.UUID, len(r.questions))
	for i, q := range r.questions {
		out[i] = q.ID
	}
	return out
}

func (r *fakeQuestionRepo) FindAll() ([]models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Question(nil), r.questions...), nil
}

func (r *fakeQuestionRepo) FindByID(id uuid.UUID) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.questions {
		if r.questions[i].ID == id {
			clone := r.questions[i]
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("question not found")
}

func (r *fakeQuestionRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.questions)), nil
}

type fakeAnswerRepo struct {
	mu        sync.Mutex
	answers   map[uuid.UUID]*models.VideoAnswer
	questions *fakeQuestionRepo
}

func newFakeAnswerRepo(questions *fakeQuestionRepo) *fakeAnswerRepo {
	return &fakeAnswerRepo{
		answers:   make(map[uuid.UUID]*models.VideoAnswer),
		questions: questions,
	}
}

func (r *fakeAnswerRepo) get(id uuid.UUID) models.VideoAnswer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.answers[id]
}

// addCompleted seeds an already transcribed answer.
func (r *fakeAnswerRepo) addCompleted(applicantID, questionID uuid.UUID, transcript string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.answers[id] = &models.VideoAnswer{
		ID:                  id,
		ApplicantID:         applicantID,
		QuestionID:          questionID,
		VideoURL:            fmt.Sprintf("gs://test/videos/%s/%s/%s.webm", applicantID, questionID, id),
		Transcript:          &transcript,
		TranscriptionStatus: models.TranscriptionCompleted,
	}
	return id
}

func (r *fakeAnswerRepo) Upsert(applicantID, questionID uuid.UUID, videoURL string) (*models.VideoAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.answers {
		if a.ApplicantID == applicantID && a.QuestionID == questionID {
			a.VideoURL = videoURL
			a.Transcript = nil
			a.TranscriptionStatus = models.TranscriptionPending
			clone := *a
			return &clone, nil
		}
	}
	answer := &models.VideoAnswer{
		ID:                  uuid.New(),
		ApplicantID:         applicantID,
		QuestionID:          questionID,
		VideoURL:            videoURL,
		TranscriptionStatus: models.TranscriptionPending,
	}
	r.answers[answer.ID] = answer
	clone := *answer
	return &clone, nil
}

func (r *fakeAnswerRepo) FindByID(id uuid.UUID) (*models.VideoAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok {
		return nil, apperrors.NotFound("video answer not found")
	}
	clone := *answer
	return &clone, nil
}

func (r *fakeAnswerRepo) FindDetailsByApplicant(applicantID uuid.UUID) ([]models.AnswerDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AnswerDetail
	for _, a := range r.answers {
		if a.ApplicantID != applicantID {
			continue
		}
		out = append(out, models.AnswerDetail{
			ID:                  a.ID.String(),
			QuestionID:          a.QuestionID.String(),
			VideoURL:            a.VideoURL,
			Transcript:          a.Transcript,
			TranscriptionStatus: string(a.TranscriptionStatus),
		})
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindTranscriptsByApplicant(applicantID uuid.UUID) ([]repositories.AnswerTranscript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repositories.AnswerTranscript
	for _, a := range r.answers {
		if a.ApplicantID != applicantID {
			continue
		}
		order := 0
		questionText := ""
		if q, err := r.questions.FindByID(a.QuestionID); err == nil {
			order = q.OrderNumber
			questionText = q.QuestionText
		}
		out = append(out, repositories.AnswerTranscript{
			QuestionText: questionText,
			OrderNumber:  order,
			Transcript:   a.Transcript,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (r *fakeAnswerRepo) CountCompletedByApplicant(applicantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.answers {
		if a.ApplicantID == applicantID && a.TranscriptionStatus == models.TranscriptionCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeAnswerRepo) MarkProcessing(id uuid.UUID, videoURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok || answer.VideoURL != videoURL {
		return false, nil
	}
	answer.TranscriptionStatus = models.TranscriptionProcessing
	return true, nil
}

func (r *fakeAnswerRepo) Complete(id uuid.UUID, videoURL, transcript string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok || answer.VideoURL != videoURL {
		return false, nil
	}
	answer.Transcript = &transcript
	answer.TranscriptionStatus = models.TranscriptionCompleted
	return true, nil
}

func (r *fakeAnswerRepo) MarkFailed(id uuid.UUID, videoURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok || answer.VideoURL != videoURL {
		return false, nil
	}
	answer.TranscriptionStatus = models.TranscriptionFailed
	return true, nil
}

type fakeEvaluationRepo struct {
	mu          sync.Mutex
	evaluations map[uuid.UUID]*models.Evaluation
	upserts     int
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{evaluations: make(map[uuid.UUID]*models.Evaluation)}
}

func (r *fakeEvaluationRepo) get(applicantID uuid.UUID) *models.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.evaluations[applicantID]; ok {
		clone := *e
		return &clone
	}
	return nil
}

func (r *fakeEvaluationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evaluations)
}

func (r *fakeEvaluationRepo) UpsertProcessing(applicantID uuid.UUID) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	eval, ok := r.evaluations[applicantID]
	if !ok {
		eval = &models.Evaluation{
			ID:          uuid.New(),
			ApplicantID: applicantID,
		}
		r.evaluations[applicantID] = eval
	}
	eval.EvaluationStatus = models.EvaluationProcessing
	eval.ErrorMessage = nil
	clone := *eval
	return &clone, nil
}

func (r *fakeEvaluationRepo) CompleteResult(applicantID uuid.UUID, totalScore int, breakdown models.ScoreBreakdown, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eval, ok := r.evaluations[applicantID]
	if !ok {
		return apperrors.NotFound("evaluation not found")
	}
	eval.TotalScore = &totalScore
	eval.AIComment = &comment
	eval.EvaluationStatus = models.EvaluationCompleted
	return nil
}

func (r *fakeEvaluationRepo) MarkFailed(applicantID uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eval, ok := r.evaluations[applicantID]
	if !ok {
		return apperrors.NotFound("evaluation not found")
	}
	eval.EvaluationStatus = models.EvaluationFailed
	eval.ErrorMessage = &errorMsg
	return nil
}

func (r *fakeEvaluationRepo) FindByApplicant(applicantID uuid.UUID) (*models.Evaluation, error) {
	if eval := r.get(applicantID); eval != nil {
		return eval, nil
	}
	return nil, apperrors.NotFound("evaluation not found")
}

// ==========================
// Collaborator Fakes
// ==========================

// fakeTranscriber returns canned transcripts per locator and records the
// locators it was asked to transcribe.
type fakeTranscriber struct {
	mu          sync.Mutex
	transcripts map[string]string
	failures    map[string]error
	err         error
	calls       []string
}

func newFakeTranscriber() *fakeTranscriber {
	return &fakeTranscriber{
		transcripts: make(map[string]string),
		failures:    make(map[string]error),
	}
}

func (f *fakeTranscriber) Transcribe(_ context.Context, locator string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locator)
	if f.err != nil {
		return "", f.err
	}
	if err, ok := f.failures[locator]; ok {
		return "", err
	}
	if transcript, ok := f.transcripts[locator]; ok {
		return transcript, nil
	}
	return "default transcript", nil
}

func (f *fakeTranscriber) failLocator(locator string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[locator] = err
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeScorer struct {
	mu     sync.Mutex
	result *ScoreResult
	err    error
	calls  int
}

func (f *fakeScorer) Evaluate(_ context.Context, _ []repositories.AnswerTranscript) (*ScoreResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		clone := *f.result
		return &clone, nil
	}
	return &ScoreResult{
		TotalScore: 82,
		Breakdown: models.ScoreBreakdown{
			Passion:        90,
			BusinessPlan:   80,
			Vision:         85,
			ProblemSolving: 75,
			Strength:       80,
		},
		Comment: "Strong applicant with a concrete plan.",
	}, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeMediaStore keeps uploads in memory keyed by generated locator.
type fakeMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: make(map[string][]byte)}
}

func (f *fakeMediaStore) Put(_ context.Context, r io.Reader, applicantID, questionID uuid.UUID, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	locator := fmt.Sprintf("gs://test/videos/%s/%s/%s-%s", applicantID, questionID, uuid.New(), filename)
	f.objects[locator] = data
	return locator, nil
}

func (f *fakeMediaStore) Get(_ context.Context, locator string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[locator]
	if !ok {
		return nil, apperrors.New(apperrors.KindStorage, "object %s not found", locator)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
