package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrTutorNotFound          = errors.New("tutor not found")
)

// lateCancellationWindow is the cutoff before the scheduled start inside
// which a student cancellation of a confirmed lesson incurs a penalty.
const lateCancellationWindow = 12 * time.Hour

const lateCancellationPenaltyRate = 0.5

type tutorProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// BookingNotifier pushes lifecycle events to connected dashboard clients.
// Delivery is best effort.
type BookingNotifier interface {
	NotifyBookingUpdate(event string, booking *models.Booking)
}

type BookingService struct {
	db               *pgxpool.Pool
	bookingRepo      *repository.BookingRepository
	penaltyRepo      *repository.PenaltyRepository
	tutorProfileRepo tutorProfileReader
	userRepo         userReader
	notifier         BookingNotifier
	now              func() time.Time
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	penaltyRepo *repository.PenaltyRepository,
	userRepo userReader,
	tutorProfileRepo tutorProfileReader,
	notifier BookingNotifier,
) *BookingService {
	return &BookingService{
		db:               db,
		bookingRepo:      bookingRepo,
		penaltyRepo:      penaltyRepo,
		userRepo:         userRepo,
		tutorProfileRepo: tutorProfileRepo,
		notifier:         notifier,
		now:              time.Now,
	}
}

type BookLessonInput struct {
	TutorID         int64
	Subject         *string
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

func (s *BookingService) BookLesson(
	ctx context.Context,
	studentID int64,
	input BookLessonInput,
) (*models.BookingDetail, error) {
	if input.TutorID <= 0 {
		return nil, ErrInvalidInput
	}
	if _, ok := allowedDurations[input.DurationMinutes]; !ok {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(s.now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}
	if studentID == input.TutorID {
		return nil, ErrInvalidInput
	}

	tutor, err := s.userRepo.GetByID(ctx, input.TutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	if tutor.Role != "tutor" {
		return nil, ErrInvalidInput
	}

	profile, err := s.tutorProfileRepo.GetByUserID(ctx, input.TutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	if profile.ApprovalStatus != "approved" || !profile.OnboardingComplete ||
		profile.HourlyRate == nil || *profile.HourlyRate <= 0 {
		return nil, ErrInvalidInput
	}

	price := *profile.HourlyRate * float64(input.DurationMinutes) / 60

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)

	// Serializes concurrent booking attempts against the same tutor so the
	// conflict check below cannot race.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TutorID); err != nil {
		return nil, err
	}

	hasConflict, err := txBookingRepo.HasConflict(
		ctx,
		input.TutorID,
		input.ScheduledAt.UTC(),
		input.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		StudentID:       studentID,
		TutorID:         input.TutorID,
		Subject:         input.Subject,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Price:           price,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notify("booking_requested", booking)
	return &models.BookingDetail{Booking: *booking}, nil
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.BookingListFilter,
) ([]models.BookingDetail, error) {
	bookings, err := s.bookingRepo.List(ctx, repository.BookingListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	details := make([]models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		details = append(details, models.BookingDetail{Booking: booking})
	}
	return details, nil
}

func (s *BookingService) GetBooking(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}

	detail := &models.BookingDetail{Booking: *booking}
	penalty, err := s.penaltyRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Penalty = penalty
	}
	return detail, nil
}

func (s *BookingService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
	requestedStatus string,
) (*models.BookingDetail, error) {
	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txPenaltyRepo := repository.NewPenaltyRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}
	if err := validateStatusTransition(role, actorID, booking, nextStatus, s.now().UTC()); err != nil {
		return nil, err
	}

	var updated *models.Booking
	if nextStatus == "cancelled" {
		updated, err = txBookingRepo.MarkCancelled(ctx, bookingID, booking.Status, role)
	} else {
		updated, err = txBookingRepo.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, nextStatus)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if role == "student" && nextStatus == "cancelled" && isLateCancellation(booking, s.now().UTC()) {
		_, err := txPenaltyRepo.Create(ctx, repository.CreatePenaltyInput{
			StudentID: booking.StudentID,
			BookingID: booking.ID,
			Reason:    "late_cancellation",
			Amount:    booking.Price * lateCancellationPenaltyRate,
		})
		if err != nil {
			return nil, err
		}
	}

	if nextStatus == "completed" {
		txTutorRepo := repository.NewTutorProfileRepository(tx)
		if err := txTutorRepo.IncrementLessons(ctx, booking.TutorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notify("booking_"+nextStatus, updated)
	return s.GetBooking(ctx, actorID, role, updated.ID)
}

func (s *BookingService) notify(event string, booking *models.Booking) {
	if s.notifier == nil || booking == nil {
		return
	}
	s.notifier.NotifyBookingUpdate(event, booking)
}

// isLateCancellation reports whether a confirmed lesson is being cancelled
// inside the penalty window before its start.
func isLateCancellation(booking *models.Booking, now time.Time) bool {
	if booking.Status != "confirmed" {
		return false
	}
	return booking.ScheduledAt.UTC().Sub(now) < lateCancellationWindow
}

func canAccessBooking(role string, actorID int64, booking *models.Booking) bool {
	switch role {
	case "student":
		return booking.StudentID == actorID
	case "tutor":
		return booking.TutorID == actorID
	case "admin":
		return true
	default:
		return false
	}
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeRequestedStatus(status string) (string, error) {
	switch normalizeToken(status) {
	case "confirm", "confirmed":
		return "confirmed", nil
	case "complete", "completed":
		return "completed", nil
	case "cancel", "cancelled", "canceled":
		return "cancelled", nil
	case "refund", "refunded":
		return "refunded", nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(
	role string,
	actorID int64,
	booking *models.Booking,
	nextStatus string,
	now time.Time,
) error {
	switch role {
	case "student":
		if booking.StudentID != actorID || nextStatus != "cancelled" {
			return ErrForbidden
		}
		if booking.Status != "pending" && booking.Status != "confirmed" {
			return ErrInvalidStateTransition
		}
		return nil
	case "tutor":
		if booking.TutorID != actorID {
			return ErrForbidden
		}
		switch nextStatus {
		case "confirmed":
			if booking.Status != "pending" {
				return ErrInvalidStateTransition
			}
		case "completed":
			if booking.Status != "confirmed" {
				return ErrInvalidStateTransition
			}
			if booking.End().After(now) {
				return ErrInvalidStateTransition
			}
		case "cancelled":
			if booking.Status != "pending" && booking.Status != "confirmed" {
				return ErrInvalidStateTransition
			}
		default:
			return ErrForbidden
		}
		return nil
	case "admin":
		if nextStatus != "refunded" {
			return ErrForbidden
		}
		if booking.Status != "cancelled" {
			return ErrInvalidStateTransition
		}
		return nil
	default:
		return ErrForbidden
	}
}
