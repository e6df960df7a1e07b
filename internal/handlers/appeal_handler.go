package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type appealApplicationService interface {
	ListPenalties(ctx context.Context, actorID int64, role string) ([]models.Penalty, error)
	FileAppeal(ctx context.Context, actorID int64, role string, penaltyID int64, message string) (*models.Appeal, error)
	ListOpenAppeals(ctx context.Context, role string) ([]models.Appeal, error)
	ResolveAppeal(ctx context.Context, adminID int64, role string, appealID int64, decision string, note *string) (*models.Appeal, error)
}

type AppealHandler struct {
	service appealApplicationService
}

func NewAppealHandler(service *services.AppealService) *AppealHandler {
	return &AppealHandler{service: service}
}

type fileAppealRequest struct {
	Message string `json:"message"`
}

type resolveAppealRequest struct {
	Decision string  `json:"decision"`
	Note     *string `json:"note"`
}

func (h *AppealHandler) ListPenalties(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	penalties, err := h.service.ListPenalties(c.Context(), userID, role)
	if err != nil {
		return mapAppealError(c, err)
	}

	return c.JSON(fiber.Map{"penalties": penalties})
}

func (h *AppealHandler) FileAppeal(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	penaltyID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || penaltyID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid penalty id"})
	}

	var req fileAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	appeal, err := h.service.FileAppeal(c.Context(), userID, role, penaltyID, req.Message)
	if err != nil {
		return mapAppealError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appeal": appeal})
}

func (h *AppealHandler) ListOpenAppeals(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	appeals, err := h.service.ListOpenAppeals(c.Context(), role)
	if err != nil {
		return mapAppealError(c, err)
	}

	return c.JSON(fiber.Map{"appeals": appeals})
}

func (h *AppealHandler) ResolveAppeal(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	appealID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || appealID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appeal id"})
	}

	var req resolveAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Note != nil && strings.TrimSpace(*req.Note) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "note must not be empty"})
	}

	appeal, err := h.service.ResolveAppeal(c.Context(), userID, role, appealID, req.Decision, req.Note)
	if err != nil {
		return mapAppealError(c, err)
	}

	return c.JSON(fiber.Map{"appeal": appeal})
}

func mapAppealError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrAlreadyAppealed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Penalty has already been appealed"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process appeal request"})
	}
}
