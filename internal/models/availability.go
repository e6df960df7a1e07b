package models

import "time"

// AvailabilityRule is a weekly recurring template, not a calendar instance.
// StartTime and EndTime are naive "HH:MM" strings interpreted in the rule's
// stored timezone.
type AvailabilityRule struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeSlot is a candidate booking interval of fixed duration derived from a
// tutor's recurring availability.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
