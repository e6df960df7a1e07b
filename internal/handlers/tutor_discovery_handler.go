package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type tutorDiscoveryRepository interface {
	List(ctx context.Context, filter repository.TutorListFilter) ([]models.TutorProfile, int, error)
	GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error)
}

type studentDiscoveryRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error)
}

type tutorRecommender interface {
	GetRecommendedTutors(ctx context.Context, profile *models.StudentProfile, limit int) ([]models.TutorWithScore, error)
}

type slotPreviewer interface {
	GetSlotsPreview(ctx context.Context, tutorID int64, limit int) ([]string, error)
}

type TutorDiscoveryHandler struct {
	tutorRepo             tutorDiscoveryRepository
	studentProfileRepo    studentDiscoveryRepository
	recommendationService tutorRecommender
	availabilityService   slotPreviewer
}

func NewTutorDiscoveryHandler(
	tutorRepo tutorDiscoveryRepository,
	studentProfileRepo studentDiscoveryRepository,
	recommendationService tutorRecommender,
	availabilityService slotPreviewer,
) *TutorDiscoveryHandler {
	return &TutorDiscoveryHandler{
		tutorRepo:             tutorRepo,
		studentProfileRepo:    studentProfileRepo,
		recommendationService: recommendationService,
		availabilityService:   availabilityService,
	}
}

func (h *TutorDiscoveryHandler) ListTutors(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	minRating, err := parseNonNegativeFloat(c.Query("min_rating"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_rating must be a valid non-negative number"})
	}
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_price must be a valid non-negative number"})
	}
	experience, err := parseNonNegativeInt(c.Query("experience"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "experience must be a valid non-negative integer"})
	}

	tutors, total, err := h.tutorRepo.List(c.Context(), repository.TutorListFilter{
		Subject:    strings.TrimSpace(c.Query("subject")),
		MinRating:  minRating,
		MaxPrice:   maxPrice,
		Experience: experience,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutors"})
	}

	response := make([]models.TutorListResponse, 0, len(tutors))
	for _, tutor := range tutors {
		response = append(response, buildTutorListResponse(tutor, 0))
	}

	return c.JSON(fiber.Map{
		"tutors":     response,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *TutorDiscoveryHandler) GetRecommendedTutors(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "student" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	studentProfile, err := h.studentProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student profile"})
	}

	tutors, err := h.recommendationService.GetRecommendedTutors(c.Context(), studentProfile, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch recommended tutors"})
	}

	response := make([]models.TutorListResponse, 0, len(tutors))
	for _, tutor := range tutors {
		response = append(response, buildTutorListResponse(tutor.TutorProfile, tutor.MatchScore))
	}

	return c.JSON(fiber.Map{"tutors": response})
}

func (h *TutorDiscoveryHandler) GetTutorDetail(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	tutor, err := h.tutorRepo.GetByUserID(c.Context(), tutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutor"})
	}

	slots, err := h.availabilityService.GetSlotsPreview(c.Context(), tutorID, 3)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutor availability"})
	}

	return c.JSON(fiber.Map{
		"tutor": buildTutorDetailResponse(*tutor, slots),
	})
}

func buildTutorListResponse(tutor models.TutorProfile, matchScore int) models.TutorListResponse {
	response := models.TutorListResponse{
		ID:              strconv.FormatInt(tutor.UserID, 10),
		FullName:        stringValue(tutor.FullName),
		AvatarURL:       stringValue(tutor.AvatarURL),
		Subjects:        stringSliceValue(tutor.Subjects),
		ExperienceYears: intValueResponse(tutor.ExperienceYears),
		HourlyRate:      floatValueResponse(tutor.HourlyRate),
		Rating:          floatValueResponse(tutor.Rating),
		TotalReviews:    tutor.TotalReviews,
	}
	if matchScore > 0 {
		response.MatchScore = matchScore
	}
	return response
}

func buildTutorDetailResponse(tutor models.TutorProfile, slots []string) models.TutorDetailResponse {
	return models.TutorDetailResponse{
		TutorListResponse: buildTutorListResponse(tutor, 0),
		Bio:               stringValue(tutor.Bio),
		Qualifications:    stringSliceValue(tutor.Qualifications),
		Timezone:          stringValue(tutor.Timezone),
		TotalLessons:      tutor.TotalLessons,
		ApprovalStatus:    tutor.ApprovalStatus,
		AvailableSlots:    slots,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseNonNegativeInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

func parseNonNegativeFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

var errInvalidNumber = errors.New("invalid number")

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func stringSliceValue(value *[]string) []string {
	if value == nil {
		return []string{}
	}
	return *value
}

func floatValueResponse(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func intValueResponse(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

var _ services.TutorMatcher = (*repository.TutorProfileRepository)(nil)
