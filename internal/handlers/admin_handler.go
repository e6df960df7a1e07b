package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type tutorApprovalStore interface {
	SetApprovalStatus(ctx context.Context, tutorID int64, status string) (*models.TutorProfile, error)
}

// AdminHandler hosts the moderation surface: tutor approval today, more as it
// grows.
type AdminHandler struct {
	tutorProfileRepo tutorApprovalStore
}

func NewAdminHandler(tutorProfileRepo tutorApprovalStore) *AdminHandler {
	return &AdminHandler{tutorProfileRepo: tutorProfileRepo}
}

type tutorApprovalRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) SetTutorApproval(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	tutorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	var req tutorApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "approved" && status != "rejected" && status != "pending" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be approved, rejected, or pending"})
	}

	profile, err := h.tutorProfileRepo.SetApprovalStatus(c.Context(), tutorID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update approval status"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}
