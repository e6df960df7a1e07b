package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/arian-h/TutorAppBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubBookingService struct {
	bookResult         *models.BookingDetail
	bookErr            error
	listResult         []models.BookingDetail
	listErr            error
	getResult          *models.BookingDetail
	getErr             error
	updateStatusResult *models.BookingDetail
	updateStatusErr    error
	lastBookInput      services.BookLessonInput
	lastActorID        int64
	lastRole           string
	lastBookingID      int64
	lastStatus         string
	lastListFilter     repository.BookingListFilter
}

func (s *stubBookingService) BookLesson(_ context.Context, studentID int64, input services.BookLessonInput) (*models.BookingDetail, error) {
	s.lastActorID = studentID
	s.lastBookInput = input
	return s.bookResult, s.bookErr
}

func (s *stubBookingService) ListBookings(_ context.Context, actorID int64, role string, filter repository.BookingListFilter) ([]models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listErr
}

func (s *stubBookingService) GetBooking(_ context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) UpdateStatus(_ context.Context, actorID int64, role string, bookingID int64, requestedStatus string) (*models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastStatus = requestedStatus
	return s.updateStatusResult, s.updateStatusErr
}

func newBookingTestApp(service *stubBookingService, role, userID string) *fiber.App {
	handler := &BookingHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/bookings", handler.BookLesson)
	app.Get("/api/v1/bookings", handler.ListBookings)
	app.Get("/api/v1/bookings/:id", handler.GetBooking)
	app.Put("/api/v1/bookings/:id/status", handler.UpdateStatus)
	return app
}

func TestBookLessonReturnsCreatedBooking(t *testing.T) {
	service := &stubBookingService{
		bookResult: &models.BookingDetail{
			Booking: models.Booking{
				ID:              91,
				StudentID:       42,
				TutorID:         7,
				Status:          "pending",
				DurationMinutes: 60,
			},
		},
	}
	app := newBookingTestApp(service, "student", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"tutor_id": 7,
		"scheduled_at": "2026-03-16T09:00:00Z",
		"duration_minutes": 60,
		"notes": "quadratic equations"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 {
		t.Fatalf("expected actor id 42, got %d", service.lastActorID)
	}
	if service.lastBookInput.TutorID != 7 {
		t.Fatalf("expected tutor id 7, got %d", service.lastBookInput.TutorID)
	}
	if service.lastBookInput.DurationMinutes != 60 {
		t.Fatalf("expected 60 minutes, got %d", service.lastBookInput.DurationMinutes)
	}
}

func TestBookLessonRejectsNonStudent(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "tutor", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"tutor_id": 7,
		"scheduled_at": "2026-03-16T09:00:00Z",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestBookLessonRejectsMalformedTimestamp(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "student", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"tutor_id": 7,
		"scheduled_at": "tomorrow at nine",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBookLessonMapsConflict(t *testing.T) {
	service := &stubBookingService{bookErr: services.ErrConflict}
	app := newBookingTestApp(service, "student", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{
		"tutor_id": 7,
		"scheduled_at": "2026-03-16T09:00:00Z",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListBookingsPassesFilters(t *testing.T) {
	service := &stubBookingService{listResult: []models.BookingDetail{}}
	app := newBookingTestApp(service, "tutor", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=pending&timeframe=upcoming", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != "tutor" {
		t.Fatalf("expected role tutor, got %q", service.lastRole)
	}
	if service.lastListFilter.Status != "pending" {
		t.Fatalf("expected status filter pending, got %q", service.lastListFilter.Status)
	}
	if service.lastListFilter.Timeframe != "upcoming" {
		t.Fatalf("expected timeframe upcoming, got %q", service.lastListFilter.Timeframe)
	}
}

func TestListBookingsRejectsUnknownTimeframe(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "student", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?timeframe=someday", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusMapsInvalidTransition(t *testing.T) {
	service := &stubBookingService{updateStatusErr: services.ErrInvalidStateTransition}
	app := newBookingTestApp(service, "tutor", "7")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/11/status", strings.NewReader(`{"status": "completed"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastBookingID != 11 {
		t.Fatalf("expected booking id 11, got %d", service.lastBookingID)
	}
	if service.lastStatus != "completed" {
		t.Fatalf("expected requested status completed, got %q", service.lastStatus)
	}
}
