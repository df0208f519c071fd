package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

// ScoreResult is a structurally valid scoring outcome: total and every
// criterion in range, comment present.
type ScoreResult struct {
	TotalScore int
	Breakdown  models.ScoreBreakdown
	Comment    string
}

// ScorerService evaluates an applicant's full transcribed answer set.
type ScorerService interface {
	Evaluate(ctx context.Context, answers []repositories.AnswerTranscript) (*ScoreResult, error)
}

type scorerService struct {
	gemini        GeminiService
	model         string
	promptBuilder *PromptBuilder
}

func NewScorerService(gemini GeminiService, model string) ScorerService {
	return &scorerService{
		gemini:        gemini,
		model:         model,
		promptBuilder: NewPromptBuilder(),
	}
}

func (s *scorerService) Evaluate(ctx context.Context, answers []repositories.AnswerTranscript) (*ScoreResult, error) {
	if len(answers) == 0 {
		return nil, apperrors.New(apperrors.KindScoring, "no answers to evaluate")
	}

	prompt := s.promptBuilder.BuildEvaluationPrompt(answers)
	response, err := s.gemini.GenerateText(ctx, s.model, prompt, 0.3)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindScoring, err, "scorer call failed")
	}

	return ParseScoreResponse(response)
}

// rawScoreResponse mirrors the scorer's JSON contract with optional fields
// so missing keys are distinguishable from zero scores.
type rawScoreResponse struct {
	TotalScore     *int            `json:"total_score"`
	DetailedScores map[string]*int `json:"detailed_scores"`
	AIComment      string          `json:"ai_comment"`
}

// ParseScoreResponse validates the scorer's response before it may be
// persisted as a completed evaluation. Any structural defect is a scoring
// error, never a completed evaluation with garbage data.
func ParseScoreResponse(response string) (*ScoreResult, error) {
	var raw rawScoreResponse
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.KindScoring, err, "malformed scorer response")
	}

	if raw.TotalScore == nil {
		return nil, apperrors.New(apperrors.KindScoring, "scorer response missing total_score")
	}
	if *raw.TotalScore < 0 || *raw.TotalScore > 100 {
		return nil, apperrors.New(apperrors.KindScoring, "total_score out of range: %d", *raw.TotalScore)
	}
	if raw.DetailedScores == nil {
		return nil, apperrors.New(apperrors.KindScoring, "scorer response missing detailed_scores")
	}

	criteria := make(map[string]int, len(raw.DetailedScores))
	for _, name := range []string{"passion", "business_plan", "vision", "problem_solving", "strength"} {
		score, ok := raw.DetailedScores[name]
		if !ok || score == nil {
			return nil, apperrors.New(apperrors.KindScoring, "scorer response missing criterion %s", name)
		}
		criteria[name] = *score
	}

	breakdown := models.ScoreBreakdown{
		Passion:        criteria["passion"],
		BusinessPlan:   criteria["business_plan"],
		Vision:         criteria["vision"],
		ProblemSolving: criteria["problem_solving"],
		Strength:       criteria["strength"],
	}
	if err := breakdown.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindScoring, err, "invalid score breakdown")
	}

	comment := strings.TrimSpace(raw.AIComment)
	if comment == "" {
		return nil, apperrors.New(apperrors.KindScoring, "scorer response missing ai_comment")
	}

	return &ScoreResult{
		TotalScore: *raw.TotalScore,
		Breakdown:  breakdown,
		Comment:    comment,
	}, nil
}

// extractJSON pulls the JSON object out of a response that may be wrapped
// in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
