package handlers

import (
	"context"
	"strconv"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type studentOnboardingProfileStore interface {
	UpdateOnboarding(ctx context.Context, userID int64, req repository.StudentOnboardingInput) (*models.StudentProfile, error)
}

type tutorOnboardingProfileStore interface {
	UpdateOnboarding(ctx context.Context, userID int64, req repository.TutorOnboardingInput) (*models.TutorProfile, error)
}

type OnboardingHandler struct {
	studentProfileRepo studentOnboardingProfileStore
	tutorProfileRepo   tutorOnboardingProfileStore
}

func NewOnboardingHandler(studentProfileRepo studentOnboardingProfileStore, tutorProfileRepo tutorOnboardingProfileStore) *OnboardingHandler {
	return &OnboardingHandler{
		studentProfileRepo: studentProfileRepo,
		tutorProfileRepo:   tutorProfileRepo,
	}
}

type studentOnboardingRequest struct {
	FullName      string   `json:"full_name"`
	GradeLevel    string   `json:"grade_level"`
	Subjects      []string `json:"subjects"`
	LearningGoals string   `json:"learning_goals"`
	MaxHourlyRate *float64 `json:"max_hourly_rate"`
	Timezone      string   `json:"timezone"`
}

type tutorOnboardingRequest struct {
	FullName        string   `json:"full_name"`
	Bio             string   `json:"bio"`
	Subjects        []string `json:"subjects"`
	Qualifications  []string `json:"qualifications"`
	ExperienceYears int      `json:"experience_years"`
	HourlyRate      float64  `json:"hourly_rate"`
	Timezone        string   `json:"timezone"`
}

func (h *OnboardingHandler) StudentOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "student" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req studentOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateStudentOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.studentProfileRepo.UpdateOnboarding(c.Context(), userID, repository.StudentOnboardingInput{
		FullName:      req.FullName,
		GradeLevel:    req.GradeLevel,
		Subjects:      req.Subjects,
		LearningGoals: req.LearningGoals,
		MaxHourlyRate: req.MaxHourlyRate,
		Timezone:      req.Timezone,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

// TutorOnboarding completes the tutor's profile. Approval stays pending until
// an admin reviews it; the tutor is not bookable before then.
func (h *OnboardingHandler) TutorOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "tutor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req tutorOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateTutorOnboardingRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, err := h.tutorProfileRepo.UpdateOnboarding(c.Context(), userID, repository.TutorOnboardingInput{
		FullName:        req.FullName,
		Bio:             req.Bio,
		Subjects:        req.Subjects,
		Qualifications:  req.Qualifications,
		ExperienceYears: req.ExperienceYears,
		HourlyRate:      req.HourlyRate,
		Timezone:        req.Timezone,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}
