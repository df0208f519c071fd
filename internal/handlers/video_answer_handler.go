package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/services"
)

type VideoAnswerHandler struct {
	intakeService services.IntakeService
	maxFileSize   int64
}

func NewVideoAnswerHandler(intakeService services.IntakeService, maxFileSize int64) *VideoAnswerHandler {
	return &VideoAnswerHandler{
		intakeService: intakeService,
		maxFileSize:   maxFileSize,
	}
}

// HandleSubmit handles POST /video-answers. The multipart form carries the
// video file plus applicant_id and question_id fields.
func (h *VideoAnswerHandler) HandleSubmit(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.FormValue("applicant_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid applicant_id format",
		})
	}
	questionID, err := uuid.Parse(c.FormValue("question_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question_id format",
		})
	}

	file, err := c.FormFile("video")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A video file is required",
		})
	}
	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Video file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer src.Close()

	answer, err := h.intakeService.SubmitAnswer(c.Context(), applicantID, questionID, file.Filename, src)
	if err != nil {
		return writeIntakeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.VideoAnswerResponse{
		ID:                  answer.ID.String(),
		VideoURL:            answer.VideoURL,
		TranscriptionStatus: string(answer.TranscriptionStatus),
	})
}

// writeIntakeError maps pipeline error kinds onto HTTP statuses.
func writeIntakeError(c *fiber.Ctx, err error) error {
	switch {
	case apperrors.IsKind(err, apperrors.KindValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case apperrors.IsKind(err, apperrors.KindNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
