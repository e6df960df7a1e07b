package repository

import (
	"context"

	"github.com/arian-h/TutorAppBack/internal/models"
)

type CreateReviewInput struct {
	BookingID int64
	StudentID int64
	TutorID   int64
	Rating    int
	Comment   *string
}

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	query := `
		INSERT INTO reviews (booking_id, student_id, tutor_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, student_id, tutor_id, rating, comment, created_at
	`
	var review models.Review
	err := r.db.QueryRow(ctx, query,
		input.BookingID,
		input.StudentID,
		input.TutorID,
		input.Rating,
		input.Comment,
	).Scan(
		&review.ID,
		&review.BookingID,
		&review.StudentID,
		&review.TutorID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorID int64, limit, offset int) ([]models.Review, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE tutor_id = $1`, tutorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, booking_id, student_id, tutor_id, rating, comment, created_at
		FROM reviews
		WHERE tutor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tutorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.StudentID,
			&review.TutorID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
