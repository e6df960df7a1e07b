package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type availabilityRuleStore interface {
	Create(ctx context.Context, input repository.CreateAvailabilityRuleInput) (*models.AvailabilityRule, error)
	GetByID(ctx context.Context, ruleID int64) (*models.AvailabilityRule, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]models.AvailabilityRule, error)
	Update(ctx context.Context, ruleID int64, input repository.UpdateAvailabilityRuleInput) (*models.AvailabilityRule, error)
	Delete(ctx context.Context, ruleID int64) error
}

type slotCalculator interface {
	GetAvailableTimeSlots(ctx context.Context, tutorID int64, date time.Time, durationMinutes int) ([]models.TimeSlot, error)
	GetAvailableDates(ctx context.Context, tutorID int64, startDate, endDate time.Time, durationMinutes int) ([]string, error)
}

type AvailabilityHandler struct {
	ruleRepo availabilityRuleStore
	service  slotCalculator
}

func NewAvailabilityHandler(ruleRepo availabilityRuleStore, service *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		ruleRepo: ruleRepo,
		service:  service,
	}
}

type createAvailabilityRuleRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

type updateAvailabilityRuleRequest struct {
	DayOfWeek *int    `json:"day_of_week"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Timezone  *string `json:"timezone"`
	IsActive  *bool   `json:"is_active"`
}

func (h *AvailabilityHandler) ListRules(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "tutor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	rules, err := h.ruleRepo.ListByTutor(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch availability rules"})
	}

	return c.JSON(fiber.Map{"rules": rules})
}

func (h *AvailabilityHandler) CreateRule(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "tutor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createAvailabilityRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateAvailabilityRule(req.DayOfWeek, req.StartTime, req.EndTime); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	rule, err := h.ruleRepo.Create(c.Context(), repository.CreateAvailabilityRuleInput{
		TutorID:   userID,
		DayOfWeek: req.DayOfWeek,
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		Timezone:  timezone,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create availability rule"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"rule": rule})
}

func (h *AvailabilityHandler) UpdateRule(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "tutor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	ruleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ruleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rule id"})
	}

	var req updateAvailabilityRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	existing, err := h.ruleRepo.GetByID(c.Context(), ruleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability rule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch availability rule"})
	}
	if existing.TutorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	// Validate against the merged rule so a partial update cannot produce an
	// inverted window.
	dayOfWeek := existing.DayOfWeek
	if req.DayOfWeek != nil {
		dayOfWeek = *req.DayOfWeek
	}
	startTime := existing.StartTime
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	endTime := existing.EndTime
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if validationErr := validateAvailabilityRule(dayOfWeek, startTime, endTime); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}
	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timezone must not be empty"})
	}

	rule, err := h.ruleRepo.Update(c.Context(), ruleID, repository.UpdateAvailabilityRuleInput{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Timezone:  req.Timezone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability rule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update availability rule"})
	}

	return c.JSON(fiber.Map{"rule": rule})
}

func (h *AvailabilityHandler) DeleteRule(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "tutor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	ruleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ruleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rule id"})
	}

	existing, err := h.ruleRepo.GetByID(c.Context(), ruleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability rule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch availability rule"})
	}
	if existing.TutorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	if err := h.ruleRepo.Delete(c.Context(), ruleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability rule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete availability rule"})
	}

	return c.JSON(fiber.Map{"deleted": true})
}

func (h *AvailabilityHandler) GetAvailableSlots(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Query("tutor_id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tutor_id must be a valid id"})
	}

	date, err := time.Parse(services.SlotDateLayout, strings.TrimSpace(c.Query("date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be formatted as YYYY-MM-DD"})
	}

	duration, err := parseDuration(c.Query("duration"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration must be 30, 60, or 90"})
	}

	slots, err := h.service.GetAvailableTimeSlots(c.Context(), tutorID, date, duration)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"slots": slots})
}

func (h *AvailabilityHandler) GetAvailableDates(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Query("tutor_id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tutor_id must be a valid id"})
	}

	startDate, err := time.Parse(services.SlotDateLayout, strings.TrimSpace(c.Query("start_date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be formatted as YYYY-MM-DD"})
	}
	endDate, err := time.Parse(services.SlotDateLayout, strings.TrimSpace(c.Query("end_date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be formatted as YYYY-MM-DD"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not be before start_date"})
	}
	// Both endpoints are included in the scan, so a span of MaxRangeDays
	// would already yield MaxRangeDays+1 candidate dates.
	if endDate.Sub(startDate) >= services.MaxRangeDays*24*time.Hour {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date range must not cover more than 30 days"})
	}

	duration, err := parseDuration(c.Query("duration"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration must be 30, 60, or 90"})
	}

	dates, err := h.service.GetAvailableDates(c.Context(), tutorID, startDate, endDate, duration)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"dates": dates})
}

// parseDuration defaults to 60 minutes when the query param is absent.
func parseDuration(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 60, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidNumber
	}
	return value, nil
}

func validateAvailabilityRule(dayOfWeek int, startTime, endTime string) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return "day_of_week must be between 0 (Sunday) and 6 (Saturday)"
	}
	start, err := time.Parse("15:04", strings.TrimSpace(startTime))
	if err != nil {
		return "start_time must be formatted as HH:MM"
	}
	end, err := time.Parse("15:04", strings.TrimSpace(endTime))
	if err != nil {
		return "end_time must be formatted as HH:MM"
	}
	if !end.After(start) {
		return "end_time must be after start_time"
	}
	return ""
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidDuration):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration must be 30, 60, or 90"})
	case errors.Is(err, services.ErrInvalidDateRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date range"})
	case errors.Is(err, services.ErrTutorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute availability"})
	}
}
