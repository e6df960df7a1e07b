package models

type StudentDashboard struct {
	UpcomingBookings []BookingDetail `json:"upcoming_bookings"`
	CompletedLessons int             `json:"completed_lessons"`
	PendingRequests  int             `json:"pending_requests"`
	ActivePenalties  int             `json:"active_penalties"`
}

type TutorDashboard struct {
	UpcomingBookings []BookingDetail `json:"upcoming_bookings"`
	PendingRequests  int             `json:"pending_requests"`
	CompletedLessons int             `json:"completed_lessons"`
	Rating           float64         `json:"rating"`
	TotalReviews     int             `json:"total_reviews"`
}
