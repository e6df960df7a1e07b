package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
)

const bookingColumns = `id, student_id, tutor_id, subject, scheduled_at, duration_min, status, price,
		notes, cancelled_by, cancelled_at, video_channel, created_at, updated_at`

type CreateBookingInput struct {
	StudentID       int64
	TutorID         int64
	Subject         *string
	ScheduledAt     time.Time
	DurationMinutes int
	Price           float64
	Notes           *string
}

type BookingListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := fmt.Sprintf(`
		INSERT INTO bookings (student_id, tutor_id, subject, scheduled_at, duration_min, status, price, notes)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
		RETURNING %s
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query,
		input.StudentID,
		input.TutorID,
		input.Subject,
		input.ScheduledAt,
		input.DurationMinutes,
		input.Price,
		input.Notes,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE id = $1
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, error) {
	actorColumn := "student_id"
	if filter.Role == "tutor" {
		actorColumn = "tutor_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, bookingColumns, strings.Join(whereParts, " AND "))

	return r.list(ctx, query, args...)
}

// ListOccupying returns the bookings that occupy tutor time inside
// [from, to). Cancelled and refunded bookings do not occupy their slot.
func (r *BookingRepository) ListOccupying(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE tutor_id = $1
		  AND status NOT IN ('cancelled', 'refunded')
		  AND scheduled_at < $3
		  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2
		ORDER BY scheduled_at ASC, id ASC
	`, bookingColumns)
	return r.list(ctx, query, tutorID, from, to)
}

func (r *BookingRepository) UpdateStatusIfCurrent(ctx context.Context, bookingID int64, currentStatus, nextStatus string) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus))
}

func (r *BookingRepository) MarkCancelled(ctx context.Context, bookingID int64, currentStatus, cancelledBy string) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = 'cancelled', cancelled_by = $3, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query, bookingID, currentStatus, cancelledBy))
}

func (r *BookingRepository) SetVideoChannel(ctx context.Context, bookingID int64, channel string) (*models.Booking, error) {
	query := fmt.Sprintf(`
		UPDATE bookings
		SET video_channel = COALESCE(video_channel, $2), updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, bookingColumns)
	return r.scan(r.db.QueryRow(ctx, query, bookingID, channel))
}

func (r *BookingRepository) HasConflict(ctx context.Context, tutorID int64, requestedTime time.Time, durationMinutes int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE tutor_id = $1
			  AND status NOT IN ('cancelled', 'refunded')
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, tutorID, requestedTime, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

func (r *BookingRepository) CountByStatus(ctx context.Context, actorColumn string, actorID int64, status string) (int, error) {
	if actorColumn != "student_id" && actorColumn != "tutor_id" {
		return 0, fmt.Errorf("invalid actor column %q", actorColumn)
	}
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM bookings
		WHERE %s = $1 AND status = $2
	`, actorColumn)
	var count int
	if err := r.db.QueryRow(ctx, query, actorID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) scan(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorID,
		&booking.Subject,
		&booking.ScheduledAt,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.Price,
		&booking.Notes,
		&booking.CancelledBy,
		&booking.CancelledAt,
		&booking.VideoChannel,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
