package models

type TutorListResponse struct {
	ID              string   `json:"id"`
	FullName        string   `json:"full_name"`
	AvatarURL       string   `json:"avatar_url"`
	Subjects        []string `json:"subjects"`
	ExperienceYears int      `json:"experience_years"`
	HourlyRate      float64  `json:"hourly_rate"`
	Rating          float64  `json:"rating"`
	TotalReviews    int      `json:"total_reviews"`
	MatchScore      int      `json:"match_score,omitempty"`
}

type TutorDetailResponse struct {
	TutorListResponse
	Bio            string   `json:"bio"`
	Qualifications []string `json:"qualifications"`
	Timezone       string   `json:"timezone"`
	TotalLessons   int      `json:"total_lessons"`
	ApprovalStatus string   `json:"approval_status"`
	AvailableSlots []string `json:"available_slots"`
}

type TutorWithScore struct {
	TutorProfile
	MatchScore int `json:"match_score"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
