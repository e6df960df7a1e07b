package models

import "time"

type Penalty struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	BookingID int64     `json:"booking_id"`
	Reason    string    `json:"reason"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Appeal struct {
	ID             int64     `json:"id"`
	PenaltyID      int64     `json:"penalty_id"`
	StudentID      int64     `json:"student_id"`
	Message        string    `json:"message"`
	Status         string    `json:"status"`
	ResolvedBy     *int64    `json:"resolved_by"`
	ResolutionNote *string   `json:"resolution_note"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
