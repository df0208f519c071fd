package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
)

type QuestionHandler struct {
	questionRepo repositories.QuestionRepository
}

func NewQuestionHandler(questionRepo repositories.QuestionRepository) *QuestionHandler {
	return &QuestionHandler{questionRepo: questionRepo}
}

// HandleList handles GET /questions
func (h *QuestionHandler) HandleList(c *fiber.Ctx) error {
	questions, err := h.questionRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load questions",
		})
	}
	return c.JSON(questions)
}
