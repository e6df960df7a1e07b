package models

import "time"

type TutorProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	AvatarURL          *string   `json:"avatar_url"`
	Bio                *string   `json:"bio"`
	Subjects           *[]string `json:"subjects"`
	Qualifications     *[]string `json:"qualifications"`
	ExperienceYears    *int      `json:"experience_years"`
	HourlyRate         *float64  `json:"hourly_rate"`
	Timezone           *string   `json:"timezone"`
	Rating             *float64  `json:"rating"`
	TotalReviews       int       `json:"total_reviews"`
	TotalLessons       int       `json:"total_lessons"`
	ApprovalStatus     string    `json:"approval_status"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
