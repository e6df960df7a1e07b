package models

import "time"

type Booking struct {
	ID              int64      `json:"id"`
	StudentID       int64      `json:"student_id"`
	TutorID         int64      `json:"tutor_id"`
	Subject         *string    `json:"subject"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Price           float64    `json:"price"`
	Notes           *string    `json:"notes"`
	CancelledBy     *string    `json:"cancelled_by"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	VideoChannel    *string    `json:"video_channel,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type BookingDetail struct {
	Booking
	Penalty *Penalty `json:"penalty,omitempty"`
}

// End is the exclusive end of the booking's occupied interval
// [ScheduledAt, ScheduledAt+Duration).
func (b Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
