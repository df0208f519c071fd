package models

import "time"

type CreateApplicantRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	BusinessPlanURL *string `json:"business_plan_url,omitempty" validate:"omitempty,url"`
}

type CreateApplicantResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CompleteSubmissionRequest struct {
	ApplicantID string `json:"applicant_id" validate:"required,uuid"`
}

type VideoAnswerResponse struct {
	ID                  string `json:"id"`
	VideoURL            string `json:"video_url"`
	TranscriptionStatus string `json:"transcription_status"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	Admin AdminFragment `json:"admin"`
}

type AdminFragment struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ApplicantSummary is the admin list row: applicant joined with its
// evaluation outcome, if any.
type ApplicantSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	TotalScore       *int      `json:"total_score,omitempty"`
	EvaluationStatus *string   `json:"evaluation_status,omitempty"`
}

// AnswerDetail is one answer joined with its question, ordered by the
// question's position.
type AnswerDetail struct {
	ID                  string  `json:"id"`
	QuestionID          string  `json:"question_id"`
	QuestionText        string  `json:"question_text"`
	OrderNumber         int     `json:"order_number"`
	VideoURL            string  `json:"video_url"`
	Transcript          *string `json:"transcript,omitempty"`
	TranscriptionStatus string  `json:"transcription_status"`
}

type ApplicantDetailResponse struct {
	Applicant    *Applicant     `json:"applicant"`
	Evaluation   *Evaluation    `json:"evaluation,omitempty"`
	VideoAnswers []AnswerDetail `json:"video_answers"`
}
