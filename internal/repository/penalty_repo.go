package repository

import (
	"context"

	"github.com/arian-h/TutorAppBack/internal/models"
)

const penaltyColumns = `id, student_id, booking_id, reason, amount, status, created_at, updated_at`

type CreatePenaltyInput struct {
	StudentID int64
	BookingID int64
	Reason    string
	Amount    float64
}

type PenaltyRepository struct {
	db DBTX
}

func NewPenaltyRepository(db DBTX) *PenaltyRepository {
	return &PenaltyRepository{db: db}
}

func (r *PenaltyRepository) Create(ctx context.Context, input CreatePenaltyInput) (*models.Penalty, error) {
	query := `
		INSERT INTO penalties (student_id, booking_id, reason, amount, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING ` + penaltyColumns
	return r.scan(r.db.QueryRow(ctx, query,
		input.StudentID,
		input.BookingID,
		input.Reason,
		input.Amount,
	))
}

func (r *PenaltyRepository) GetByID(ctx context.Context, penaltyID int64) (*models.Penalty, error) {
	query := `
		SELECT ` + penaltyColumns + `
		FROM penalties
		WHERE id = $1
	`
	return r.scan(r.db.QueryRow(ctx, query, penaltyID))
}

func (r *PenaltyRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.Penalty, error) {
	query := `
		SELECT ` + penaltyColumns + `
		FROM penalties
		WHERE booking_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *PenaltyRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Penalty, error) {
	query := `
		SELECT ` + penaltyColumns + `
		FROM penalties
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	penalties := make([]models.Penalty, 0)
	for rows.Next() {
		penalty, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		penalties = append(penalties, *penalty)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return penalties, nil
}

func (r *PenaltyRepository) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	query := `SELECT COUNT(*) FROM penalties WHERE student_id = $1 AND status = 'active'`
	var count int
	if err := r.db.QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PenaltyRepository) UpdateStatusIfCurrent(ctx context.Context, penaltyID int64, currentStatus, nextStatus string) (*models.Penalty, error) {
	query := `
		UPDATE penalties
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + penaltyColumns
	return r.scan(r.db.QueryRow(ctx, query, penaltyID, currentStatus, nextStatus))
}

func (r *PenaltyRepository) scan(row rowScanner) (*models.Penalty, error) {
	var penalty models.Penalty
	err := row.Scan(
		&penalty.ID,
		&penalty.StudentID,
		&penalty.BookingID,
		&penalty.Reason,
		&penalty.Amount,
		&penalty.Status,
		&penalty.CreatedAt,
		&penalty.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &penalty, nil
}
