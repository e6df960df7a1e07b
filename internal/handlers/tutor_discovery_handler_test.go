package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type stubTutorDiscoveryRepo struct {
	tutors     []models.TutorProfile
	total      int
	listErr    error
	profile    *models.TutorProfile
	profileErr error
	lastFilter repository.TutorListFilter
}

func (s *stubTutorDiscoveryRepo) List(_ context.Context, filter repository.TutorListFilter) ([]models.TutorProfile, int, error) {
	s.lastFilter = filter
	return s.tutors, s.total, s.listErr
}

func (s *stubTutorDiscoveryRepo) GetByUserID(_ context.Context, _ int64) (*models.TutorProfile, error) {
	return s.profile, s.profileErr
}

type stubStudentDiscoveryRepo struct {
	profile *models.StudentProfile
	err     error
}

func (s *stubStudentDiscoveryRepo) GetByUserID(_ context.Context, _ int64) (*models.StudentProfile, error) {
	return s.profile, s.err
}

type stubRecommender struct {
	tutors    []models.TutorWithScore
	err       error
	lastLimit int
}

func (s *stubRecommender) GetRecommendedTutors(_ context.Context, _ *models.StudentProfile, limit int) ([]models.TutorWithScore, error) {
	s.lastLimit = limit
	return s.tutors, s.err
}

type stubSlotPreviewer struct {
	slots []string
	err   error
}

func (s *stubSlotPreviewer) GetSlotsPreview(_ context.Context, _ int64, _ int) ([]string, error) {
	return s.slots, s.err
}

func newDiscoveryTestApp(tutorRepo *stubTutorDiscoveryRepo, studentRepo *stubStudentDiscoveryRepo, recommender *stubRecommender, previewer *stubSlotPreviewer, role, userID string) *fiber.App {
	handler := NewTutorDiscoveryHandler(tutorRepo, studentRepo, recommender, previewer)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/tutors", handler.ListTutors)
	app.Get("/api/v1/tutors/recommended", handler.GetRecommendedTutors)
	app.Get("/api/v1/tutors/:id", handler.GetTutorDetail)
	return app
}

func TestListTutorsAppliesFiltersAndPagination(t *testing.T) {
	name := "Ada Lovelace"
	tutorRepo := &stubTutorDiscoveryRepo{
		tutors: []models.TutorProfile{{UserID: 7, FullName: &name}},
		total:  25,
	}
	app := newDiscoveryTestApp(tutorRepo, &stubStudentDiscoveryRepo{}, &stubRecommender{}, &stubSlotPreviewer{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors?page=2&limit=10&subject=math&min_rating=4&max_price=50&experience=3", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if tutorRepo.lastFilter.Subject != "math" {
		t.Fatalf("expected subject filter math, got %q", tutorRepo.lastFilter.Subject)
	}
	if tutorRepo.lastFilter.MinRating != 4 || tutorRepo.lastFilter.MaxPrice != 50 || tutorRepo.lastFilter.Experience != 3 {
		t.Fatalf("unexpected numeric filters: %+v", tutorRepo.lastFilter)
	}
	if tutorRepo.lastFilter.Offset != 10 || tutorRepo.lastFilter.Limit != 10 {
		t.Fatalf("expected offset 10 limit 10, got offset %d limit %d", tutorRepo.lastFilter.Offset, tutorRepo.lastFilter.Limit)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Tutors     []models.TutorListResponse `json:"tutors"`
		Pagination models.PaginationMeta      `json:"pagination"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(payload.Tutors) != 1 || payload.Tutors[0].FullName != "Ada Lovelace" {
		t.Fatalf("unexpected tutors payload: %+v", payload.Tutors)
	}
	if payload.Pagination.Total != 25 || payload.Pagination.TotalPages != 3 || payload.Pagination.Page != 2 {
		t.Fatalf("unexpected pagination meta: %+v", payload.Pagination)
	}
}

func TestListTutorsCapsLimit(t *testing.T) {
	tutorRepo := &stubTutorDiscoveryRepo{}
	app := newDiscoveryTestApp(tutorRepo, &stubStudentDiscoveryRepo{}, &stubRecommender{}, &stubSlotPreviewer{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors?limit=500", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if tutorRepo.lastFilter.Limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, tutorRepo.lastFilter.Limit)
	}
}

func TestListTutorsRejectsMalformedRatingFilter(t *testing.T) {
	app := newDiscoveryTestApp(&stubTutorDiscoveryRepo{}, &stubStudentDiscoveryRepo{}, &stubRecommender{}, &stubSlotPreviewer{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors?min_rating=high", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetRecommendedTutorsRequiresStudentRole(t *testing.T) {
	app := newDiscoveryTestApp(&stubTutorDiscoveryRepo{}, &stubStudentDiscoveryRepo{}, &stubRecommender{}, &stubSlotPreviewer{}, "tutor", "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/recommended", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetRecommendedTutorsIncludesMatchScore(t *testing.T) {
	recommender := &stubRecommender{tutors: []models.TutorWithScore{
		{TutorProfile: models.TutorProfile{UserID: 7}, MatchScore: 85},
	}}
	app := newDiscoveryTestApp(&stubTutorDiscoveryRepo{}, &stubStudentDiscoveryRepo{profile: &models.StudentProfile{UserID: 42}}, recommender, &stubSlotPreviewer{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/recommended?limit=5", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if recommender.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", recommender.lastLimit)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Tutors []models.TutorListResponse `json:"tutors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(payload.Tutors) != 1 || payload.Tutors[0].MatchScore != 85 {
		t.Fatalf("unexpected payload: %+v", payload.Tutors)
	}
}

func TestGetTutorDetailReturnsSlotsPreview(t *testing.T) {
	bio := "Number theory and calculus."
	tutorRepo := &stubTutorDiscoveryRepo{profile: &models.TutorProfile{UserID: 7, Bio: &bio, ApprovalStatus: "approved"}}
	previewer := &stubSlotPreviewer{slots: []string{"2026-03-16T09:00:00Z", "2026-03-16T11:00:00Z"}}
	app := newDiscoveryTestApp(tutorRepo, &stubStudentDiscoveryRepo{}, &stubRecommender{}, previewer, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/7", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Tutor models.TutorDetailResponse `json:"tutor"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload.Tutor.Bio != bio {
		t.Fatalf("expected bio %q, got %q", bio, payload.Tutor.Bio)
	}
	if len(payload.Tutor.AvailableSlots) != 2 {
		t.Fatalf("expected 2 preview slots, got %d", len(payload.Tutor.AvailableSlots))
	}
}

func TestGetTutorDetailReturnsNotFound(t *testing.T) {
	tutorRepo := &stubTutorDiscoveryRepo{profileErr: pgx.ErrNoRows}
	app := newDiscoveryTestApp(tutorRepo, &stubStudentDiscoveryRepo{}, &stubRecommender{}, &stubSlotPreviewer{}, "student", "42")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tutors/99", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
