package handlers

import (
	"context"
	"errors"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const dashboardUpcomingLimit = 5

type dashboardBookingService interface {
	ListBookings(ctx context.Context, actorID int64, role string, filter repository.BookingListFilter) ([]models.BookingDetail, error)
}

type dashboardBookingCounter interface {
	CountByStatus(ctx context.Context, actorColumn string, actorID int64, status string) (int, error)
}

type dashboardPenaltyCounter interface {
	CountActiveByStudent(ctx context.Context, studentID int64) (int, error)
}

type DashboardHandler struct {
	bookingService   dashboardBookingService
	bookingRepo      dashboardBookingCounter
	penaltyRepo      dashboardPenaltyCounter
	tutorProfileRepo tutorProfileStore
}

func NewDashboardHandler(
	bookingService *services.BookingService,
	bookingRepo *repository.BookingRepository,
	penaltyRepo *repository.PenaltyRepository,
	tutorProfileRepo *repository.TutorProfileRepository,
) *DashboardHandler {
	return &DashboardHandler{
		bookingService:   bookingService,
		bookingRepo:      bookingRepo,
		penaltyRepo:      penaltyRepo,
		tutorProfileRepo: tutorProfileRepo,
	}
}

// GetDashboard shapes the response by role: students see their lesson pipeline
// plus outstanding penalties, tutors see requests and their public rating.
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != "student" && role != "tutor") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	upcoming, err := h.bookingService.ListBookings(c.Context(), userID, role, repository.BookingListFilter{
		Timeframe: "upcoming",
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	if len(upcoming) > dashboardUpcomingLimit {
		upcoming = upcoming[:dashboardUpcomingLimit]
	}

	actorColumn := "student_id"
	if role == "tutor" {
		actorColumn = "tutor_id"
	}

	completed, err := h.bookingRepo.CountByStatus(c.Context(), actorColumn, userID, "completed")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	pending, err := h.bookingRepo.CountByStatus(c.Context(), actorColumn, userID, "pending")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	if role == "student" {
		activePenalties, err := h.penaltyRepo.CountActiveByStudent(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
		}
		return c.JSON(fiber.Map{
			"dashboard": models.StudentDashboard{
				UpcomingBookings: upcoming,
				CompletedLessons: completed,
				PendingRequests:  pending,
				ActivePenalties:  activePenalties,
			},
		})
	}

	profile, err := h.tutorProfileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{
		"dashboard": models.TutorDashboard{
			UpcomingBookings: upcoming,
			PendingRequests:  pending,
			CompletedLessons: completed,
			Rating:           floatValueResponse(profile.Rating),
			TotalReviews:     profile.TotalReviews,
		},
	})
}
