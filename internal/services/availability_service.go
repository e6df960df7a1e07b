package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidDateRange = errors.New("invalid date range")
)

// MaxRangeDays caps date-range availability queries; the handler enforces it
// before the calculator runs.
const MaxRangeDays = 30

const SlotDateLayout = "2006-01-02"

const slotTimeLayout = "15:04"

var allowedDurations = map[int]struct{}{30: {}, 60: {}, 90: {}}

type availabilityRuleSource interface {
	ListActiveByTutor(ctx context.Context, tutorID int64) ([]models.AvailabilityRule, error)
}

type bookingOccupancySource interface {
	ListOccupying(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error)
}

type tutorApprovalSource interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error)
}

type AvailabilityService struct {
	ruleRepo    availabilityRuleSource
	bookingRepo bookingOccupancySource
	tutorRepo   tutorApprovalSource
	now         func() time.Time
}

func NewAvailabilityService(
	ruleRepo availabilityRuleSource,
	bookingRepo bookingOccupancySource,
	tutorRepo tutorApprovalSource,
) *AvailabilityService {
	return &AvailabilityService{
		ruleRepo:    ruleRepo,
		bookingRepo: bookingRepo,
		tutorRepo:   tutorRepo,
		now:         time.Now,
	}
}

// GetAvailableTimeSlots computes the open slots of the requested duration on
// one calendar date: the tutor's weekly rules for that weekday are expanded
// into candidates, then candidates overlapping an occupying booking or lying
// in the past are dropped.
func (s *AvailabilityService) GetAvailableTimeSlots(
	ctx context.Context,
	tutorID int64,
	date time.Time,
	durationMinutes int,
) ([]models.TimeSlot, error) {
	if _, ok := allowedDurations[durationMinutes]; !ok {
		return nil, ErrInvalidDuration
	}

	bookable, err := s.tutorIsBookable(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return []models.TimeSlot{}, nil
	}

	rules, err := s.ruleRepo.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	dayStart := date.Truncate(24 * time.Hour)
	bookings, err := s.bookingRepo.ListOccupying(ctx, tutorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return computeSlots(dayStart, durationMinutes, rules, bookings, s.now().UTC()), nil
}

// GetAvailableDates reports which dates in [startDate, endDate] still have at
// least one open slot of the requested duration. The caller caps the range at
// MaxRangeDays.
func (s *AvailabilityService) GetAvailableDates(
	ctx context.Context,
	tutorID int64,
	startDate, endDate time.Time,
	durationMinutes int,
) ([]string, error) {
	if _, ok := allowedDurations[durationMinutes]; !ok {
		return nil, ErrInvalidDuration
	}

	start := startDate.Truncate(24 * time.Hour)
	end := endDate.Truncate(24 * time.Hour)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	bookable, err := s.tutorIsBookable(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return []string{}, nil
	}

	rules, err := s.ruleRepo.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return []string{}, nil
	}

	bookings, err := s.bookingRepo.ListOccupying(ctx, tutorID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dates := make([]string, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if len(computeSlots(day, durationMinutes, rules, bookings, now)) > 0 {
			dates = append(dates, day.Format(SlotDateLayout))
		}
	}
	return dates, nil
}

// GetSlotsPreview returns up to limit upcoming slot start labels for the tutor
// detail page, scanning at most two weeks ahead.
func (s *AvailabilityService) GetSlotsPreview(ctx context.Context, tutorID int64, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	bookable, err := s.tutorIsBookable(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return []string{}, nil
	}

	rules, err := s.ruleRepo.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return []string{}, nil
	}

	now := s.now().UTC()
	start := now.Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 14)

	bookings, err := s.bookingRepo.ListOccupying(ctx, tutorID, start, end)
	if err != nil {
		return nil, err
	}

	preview := make([]string, 0, limit)
	for day := start; day.Before(end) && len(preview) < limit; day = day.AddDate(0, 0, 1) {
		for _, slot := range computeSlots(day, 60, rules, bookings, now) {
			preview = append(preview, slot.Start.Format(time.RFC3339))
			if len(preview) >= limit {
				break
			}
		}
	}
	return preview, nil
}

func (s *AvailabilityService) tutorIsBookable(ctx context.Context, tutorID int64) (bool, error) {
	profile, err := s.tutorRepo.GetByUserID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrTutorNotFound
		}
		return false, err
	}
	return profile.ApprovalStatus == "approved" && profile.OnboardingComplete, nil
}

// computeSlots is the pure core of the calculator. All times are naive: the
// rule's HH:MM window is anchored to the given day with no timezone
// conversion, matching what is stored on the rule.
func computeSlots(
	day time.Time,
	durationMinutes int,
	rules []models.AvailabilityRule,
	bookings []models.Booking,
	now time.Time,
) []models.TimeSlot {
	weekday := int(day.Weekday())
	step := time.Duration(durationMinutes) * time.Minute

	seen := make(map[int64]struct{})
	slots := make([]models.TimeSlot, 0)

	for _, rule := range rules {
		if !rule.IsActive || rule.DayOfWeek != weekday {
			continue
		}
		windowStart, ok := anchorClock(day, rule.StartTime)
		if !ok {
			continue
		}
		windowEnd, ok := anchorClock(day, rule.EndTime)
		if !ok || !windowEnd.After(windowStart) {
			continue
		}

		for cur := windowStart; !cur.Add(step).After(windowEnd); cur = cur.Add(step) {
			slotEnd := cur.Add(step)
			if cur.Before(now) {
				continue
			}
			if overlapsAny(cur, slotEnd, bookings) {
				continue
			}
			if _, dup := seen[cur.Unix()]; dup {
				continue
			}
			seen[cur.Unix()] = struct{}{}
			slots = append(slots, models.TimeSlot{Start: cur, End: slotEnd})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots
}

// overlapsAny applies the half-open interval test: a slot [start, end) and a
// booking [scheduled_at, scheduled_at+duration) conflict only when each
// starts before the other ends. Touching boundaries do not conflict.
func overlapsAny(start, end time.Time, bookings []models.Booking) bool {
	for _, booking := range bookings {
		if start.Before(booking.End()) && end.After(booking.ScheduledAt) {
			return true
		}
	}
	return false
}

func anchorClock(day time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse(slotTimeLayout, clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		time.UTC,
	), true
}
