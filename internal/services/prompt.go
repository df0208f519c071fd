package services

import (
	"fmt"
	"strings"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildTranscriptionPrompt creates the prompt sent alongside the video.
func (pb *PromptBuilder) BuildTranscriptionPrompt() string {
	return `Transcribe the audio in this video accurately.
Write down exactly what the speaker says, word for word.
Do not add explanations or interpretations. Output only the spoken content.`
}

// BuildEvaluationPrompt creates the scoring prompt over the applicant's
// full set of transcribed answers, ordered by question position.
func (pb *PromptBuilder) BuildEvaluationPrompt(answers []repositories.AnswerTranscript) string {
	var sb strings.Builder
	for i, a := range answers {
		transcript := "(no answer)"
		if a.Transcript != nil && strings.TrimSpace(*a.Transcript) != "" {
			transcript = *a.Transcript
		}
		fmt.Fprintf(&sb, "Question %d: %s\nAnswer: %s\n\n", i+1, a.QuestionText, transcript)
	}

	return fmt.Sprintf(`You are a judge AI for a startup pitch screening program.
Evaluate the transcribed video answers of an applicant and return your scoring as JSON.

[Scoring criteria] Each criterion is scored out of 100 points.
1. passion - Does the applicant convey genuine enthusiasm and a clear motivation for applying?
2. business_plan - Is the business plan concrete and feasible?
3. vision - Is the future direction of the business clear and compelling?
4. problem_solving - Does the applicant understand their current challenges and have ideas to solve them?
5. strength - Does the applicant understand their own strengths and how to apply them to the business?

[Output format]
Return your response in the following JSON format only:
{
  "total_score": <integer average of the five criteria>,
  "detailed_scores": {
    "passion": <score>,
    "business_plan": <score>,
    "vision": <score>,
    "problem_solving": <score>,
    "strength": <score>
  },
  "ai_comment": "<overall comment of roughly 200 words covering strengths and areas to improve>"
}

Be fair and strict. Output JSON only.

[Applicant's answers]
%s`, sb.String())
}
