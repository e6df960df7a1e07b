package handlers

import (
	"context"
	"errors"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type videoTokenIssuer interface {
	IssueToken(ctx context.Context, actorID int64, role string, bookingID int64) (*models.VideoToken, error)
}

type VideoHandler struct {
	service videoTokenIssuer
}

func NewVideoHandler(service *services.VideoService) *VideoHandler {
	if service == nil {
		return &VideoHandler{}
	}
	return &VideoHandler{service: service}
}

type videoTokenRequest struct {
	BookingID int64 `json:"booking_id"`
}

func (h *VideoHandler) IssueToken(c *fiber.Ctx) error {
	if h.service == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Video service is not configured"})
	}

	role, ok := c.Locals("role").(string)
	if !ok || (role != "student" && role != "tutor") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req videoTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	token, err := h.service.IssueToken(c.Context(), userID, role, req.BookingID)
	if err != nil {
		return mapVideoError(c, err)
	}

	return c.JSON(fiber.Map{"video": token})
}

func mapVideoError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "booking_id must be a valid id"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSessionNotJoinable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Video session is not joinable"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue video token"})
	}
}
