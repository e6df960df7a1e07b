package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAlreadyReviewed = errors.New("booking already reviewed")

type ReviewService struct {
	db          *pgxpool.Pool
	reviewRepo  *repository.ReviewRepository
	bookingRepo *repository.BookingRepository
}

func NewReviewService(
	db *pgxpool.Pool,
	reviewRepo *repository.ReviewRepository,
	bookingRepo *repository.BookingRepository,
) *ReviewService {
	return &ReviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
	}
}

type CreateReviewInput struct {
	BookingID int64
	Rating    int
	Comment   *string
}

// CreateReview records a student's review of a completed lesson and refreshes
// the tutor's aggregate rating in the same transaction.
func (s *ReviewService) CreateReview(
	ctx context.Context,
	actorID int64,
	role string,
	input CreateReviewInput,
) (*models.Review, error) {
	if role != "student" {
		return nil, ErrForbidden
	}
	if input.BookingID <= 0 || input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidInput
	}
	if input.Comment != nil && strings.TrimSpace(*input.Comment) == "" {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.StudentID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != "completed" {
		return nil, ErrInvalidStateTransition
	}

	exists, err := s.reviewRepo.ExistsForBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txReviewRepo := repository.NewReviewRepository(tx)
	txTutorRepo := repository.NewTutorProfileRepository(tx)

	review, err := txReviewRepo.Create(ctx, repository.CreateReviewInput{
		BookingID: input.BookingID,
		StudentID: booking.StudentID,
		TutorID:   booking.TutorID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	})
	if err != nil {
		return nil, err
	}

	if err := txTutorRepo.RefreshRating(ctx, booking.TutorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListTutorReviews(
	ctx context.Context,
	tutorID int64,
	page, limit int,
) ([]models.Review, int, error) {
	if tutorID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.reviewRepo.ListByTutor(ctx, tutorID, limit, (page-1)*limit)
}
