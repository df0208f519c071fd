package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/repositories"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/services"
)

type AdminHandler struct {
	applicantRepo  repositories.ApplicantRepository
	answerRepo     repositories.VideoAnswerRepository
	evaluationRepo repositories.EvaluationRepository
	authService    services.AuthService
}

func NewAdminHandler(
	applicantRepo repositories.ApplicantRepository,
	answerRepo repositories.VideoAnswerRepository,
	evaluationRepo repositories.EvaluationRepository,
	authService services.AuthService,
) *AdminHandler {
	return &AdminHandler{
		applicantRepo:  applicantRepo,
		answerRepo:     answerRepo,
		evaluationRepo: evaluationRepo,
		authService:    authService,
	}
}

// HandleLogin handles POST /admin/login
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	token, admin, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid username or password",
		})
	}

	return c.JSON(models.LoginResponse{
		Token: token,
		Admin: models.AdminFragment{
			ID:       admin.ID.String(),
			Username: admin.Username,
			Email:    admin.Email,
		},
	})
}

// AuthMiddleware guards the admin surface with a bearer token.
func (h *AdminHandler) AuthMiddleware(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing bearer token",
		})
	}
	adminID, err := h.authService.VerifyToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}
	c.Locals("admin_id", adminID)
	return c.Next()
}

// HandleListApplicants handles GET /admin/applicants
func (h *AdminHandler) HandleListApplicants(c *fiber.Ctx) error {
	summaries, err := h.applicantRepo.ListSummaries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load applicants",
		})
	}
	return c.JSON(summaries)
}

// HandleGetApplicant handles GET /admin/applicants/:id, the read-only
// view of transcription and evaluation state.
func (h *AdminHandler) HandleGetApplicant(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid applicant ID format",
		})
	}

	applicant, err := h.applicantRepo.FindByID(applicantID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Applicant not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load applicant",
		})
	}

	answers, err := h.answerRepo.FindDetailsByApplicant(applicantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load video answers",
		})
	}

	response := models.ApplicantDetailResponse{
		Applicant:    applicant,
		VideoAnswers: answers,
	}
	if evaluation, err := h.evaluationRepo.FindByApplicant(applicantID); err == nil {
		response.Evaluation = evaluation
	}

	return c.JSON(response)
}

// HandleUpdateStatus handles PUT /admin/applicants/:id/status. Only the
// manual decision axis is writable here; transcription and evaluation
// state stay pipeline-internal.
func (h *AdminHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid applicant ID format",
		})
	}

	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	status := models.ApplicantStatus(req.Status)
	if status != models.ApplicantAccepted && status != models.ApplicantRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be accepted or rejected",
		})
	}

	if err := h.applicantRepo.SetDecision(applicantID, status); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Applicant not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Status updated",
	})
}
