package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type stubRuleStore struct {
	createResult *models.AvailabilityRule
	createErr    error
	getResult    *models.AvailabilityRule
	getErr       error
	listResult   []models.AvailabilityRule
	listErr      error
	updateResult *models.AvailabilityRule
	updateErr    error
	deleteErr    error
	lastCreate   repository.CreateAvailabilityRuleInput
	lastUpdateID int64
	lastDeleteID int64
}

func (s *stubRuleStore) Create(_ context.Context, input repository.CreateAvailabilityRuleInput) (*models.AvailabilityRule, error) {
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubRuleStore) GetByID(_ context.Context, _ int64) (*models.AvailabilityRule, error) {
	return s.getResult, s.getErr
}

func (s *stubRuleStore) ListByTutor(_ context.Context, _ int64) ([]models.AvailabilityRule, error) {
	return s.listResult, s.listErr
}

func (s *stubRuleStore) Update(_ context.Context, ruleID int64, _ repository.UpdateAvailabilityRuleInput) (*models.AvailabilityRule, error) {
	s.lastUpdateID = ruleID
	return s.updateResult, s.updateErr
}

func (s *stubRuleStore) Delete(_ context.Context, ruleID int64) error {
	s.lastDeleteID = ruleID
	return s.deleteErr
}

type stubSlotCalculator struct {
	slots        []models.TimeSlot
	slotsErr     error
	dates        []string
	datesErr     error
	lastTutorID  int64
	lastDate     time.Time
	lastDuration int
}

func (s *stubSlotCalculator) GetAvailableTimeSlots(_ context.Context, tutorID int64, date time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	s.lastTutorID = tutorID
	s.lastDate = date
	s.lastDuration = durationMinutes
	return s.slots, s.slotsErr
}

func (s *stubSlotCalculator) GetAvailableDates(_ context.Context, tutorID int64, _, _ time.Time, durationMinutes int) ([]string, error) {
	s.lastTutorID = tutorID
	s.lastDuration = durationMinutes
	return s.dates, s.datesErr
}

func newAvailabilityTestApp(store *stubRuleStore, calc *stubSlotCalculator, role, userID string) *fiber.App {
	handler := &AvailabilityHandler{ruleRepo: store, service: calc}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/tutors/availability", handler.ListRules)
	app.Post("/api/v1/tutors/availability", handler.CreateRule)
	app.Put("/api/v1/tutors/availability/:id", handler.UpdateRule)
	app.Delete("/api/v1/tutors/availability/:id", handler.DeleteRule)
	app.Get("/api/v1/availability/slots", handler.GetAvailableSlots)
	app.Get("/api/v1/availability/dates", handler.GetAvailableDates)
	return app
}

func TestCreateRulePersistsForCurrentTutor(t *testing.T) {
	store := &stubRuleStore{createResult: &models.AvailabilityRule{ID: 3, TutorID: 7}}
	app := newAvailabilityTestApp(store, &stubSlotCalculator{}, "tutor", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"day_of_week": 1,
		"start_time": "09:00",
		"end_time": "12:00"
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
	if store.lastCreate.TutorID != 7 {
		t.Fatalf("expected tutor id 7, got %d", store.lastCreate.TutorID)
	}
	if store.lastCreate.Timezone != "UTC" {
		t.Fatalf("expected timezone to default to UTC, got %q", store.lastCreate.Timezone)
	}
}

func TestCreateRuleRejectsInvertedWindow(t *testing.T) {
	store := &stubRuleStore{}
	app := newAvailabilityTestApp(store, &stubSlotCalculator{}, "tutor", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"day_of_week": 1,
		"start_time": "12:00",
		"end_time": "09:00"
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

func TestCreateRuleRejectsNonTutor(t *testing.T) {
	app := newAvailabilityTestApp(&stubRuleStore{}, &stubSlotCalculator{}, "student", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutors/availability", strings.NewReader(`{
		"day_of_week": 1,
		"start_time": "09:00",
		"end_time": "12:00"
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

func TestUpdateRuleRejectsOtherTutorsRule(t *testing.T) {
	store := &stubRuleStore{getResult: &models.AvailabilityRule{ID: 3, TutorID: 8, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}
	app := newAvailabilityTestApp(store, &stubSlotCalculator{}, "tutor", "7")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tutors/availability/3", strings.NewReader(`{"is_active": false}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if store.lastUpdateID != 0 {
		t.Fatal("update should not reach the store")
	}
}

func TestDeleteRuleReturnsNotFoundForMissingRule(t *testing.T) {
	store := &stubRuleStore{getErr: pgx.ErrNoRows}
	app := newAvailabilityTestApp(store, &stubSlotCalculator{}, "tutor", "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/tutors/availability/99", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetAvailableSlotsPassesParams(t *testing.T) {
	calc := &stubSlotCalculator{slots: []models.TimeSlot{}}
	app := newAvailabilityTestApp(&stubRuleStore{}, calc, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?tutor_id=7&date=2026-03-16&duration=30", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if calc.lastTutorID != 7 {
		t.Fatalf("expected tutor id 7, got %d", calc.lastTutorID)
	}
	if !calc.lastDate.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", calc.lastDate)
	}
	if calc.lastDuration != 30 {
		t.Fatalf("expected duration 30, got %d", calc.lastDuration)
	}
}

func TestGetAvailableSlotsDefaultsDurationToSixty(t *testing.T) {
	calc := &stubSlotCalculator{slots: []models.TimeSlot{}}
	app := newAvailabilityTestApp(&stubRuleStore{}, calc, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?tutor_id=7&date=2026-03-16", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if calc.lastDuration != 60 {
		t.Fatalf("expected default duration 60, got %d", calc.lastDuration)
	}
}

func TestGetAvailableSlotsRejectsMalformedDate(t *testing.T) {
	app := newAvailabilityTestApp(&stubRuleStore{}, &stubSlotCalculator{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/slots?tutor_id=7&date=16-03-2026", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetAvailableDatesRejectsRangeOverThirtyDays(t *testing.T) {
	app := newAvailabilityTestApp(&stubRuleStore{}, &stubSlotCalculator{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/dates?tutor_id=7&start_date=2026-03-01&end_date=2026-04-15", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetAvailableDatesCapsInclusiveRangeAtThirtyDates(t *testing.T) {
	calc := &stubSlotCalculator{dates: []string{}}
	app := newAvailabilityTestApp(&stubRuleStore{}, calc, "student", "42")

	// 2026-03-01..2026-03-31 spans 30 days but covers 31 dates inclusive.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/dates?tutor_id=7&start_date=2026-03-01&end_date=2026-03-31", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a 31-date range, got %d", resp.StatusCode)
	}
	if calc.lastTutorID != 0 {
		t.Fatal("rejected range should not reach the calculator")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/dates?tutor_id=7&start_date=2026-03-01&end_date=2026-03-30", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for a 30-date range, got %d", resp.StatusCode)
	}
	if calc.lastTutorID != 7 {
		t.Fatal("accepted range should reach the calculator")
	}
}

func TestGetAvailableDatesRejectsInvertedRange(t *testing.T) {
	app := newAvailabilityTestApp(&stubRuleStore{}, &stubSlotCalculator{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/availability/dates?tutor_id=7&start_date=2026-03-16&end_date=2026-03-15", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
