package handlers

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/services"
)

type ApplicantHandler struct {
	applicantRepo repositories.ApplicantRepository
	intakeService services.IntakeService
}

func NewApplicantHandler(
	applicantRepo repositories.ApplicantRepository,
	intakeService services.IntakeService,
) *ApplicantHandler {
	return &ApplicantHandler{
		applicantRepo: applicantRepo,
		intakeService: intakeService,
	}
}

// HandleCreate handles POST /applicants
func (h *ApplicantHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateApplicantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a valid email is required",
		})
	}
	if req.BusinessPlanURL != nil {
		if _, err := url.ParseRequestURI(*req.BusinessPlanURL); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "business_plan_url must be a valid URL",
			})
		}
	}

	applicant := &models.Applicant{
		ID:              uuid.New(),
		Name:            req.Name,
		Email:           req.Email,
		BusinessPlanURL: req.BusinessPlanURL,
		Status:          models.ApplicantPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := h.applicantRepo.Create(applicant); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register applicant",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.CreateApplicantResponse{
		ID:     applicant.ID.String(),
		Status: string(applicant.Status),
	})
}

// HandleCompleteSubmission handles POST /video-answers/complete
func (h *ApplicantHandler) HandleCompleteSubmission(c *fiber.Ctx) error {
	var req models.CompleteSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid applicant_id format",
		})
	}

	if err := h.intakeService.CompleteSubmission(c.Context(), applicantID); err != nil {
		return writeIntakeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Submission completed",
	})
}
