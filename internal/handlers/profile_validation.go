package handlers

import (
	"strings"
)

var allowedGradeLevels = map[string]struct{}{
	"elementary":  {},
	"middle":      {},
	"high_school": {},
	"college":     {},
	"adult":       {},
}

func validateStudentOnboardingRequest(req studentOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if err := validateGradeLevel(req.GradeLevel); err != "" {
		return err
	}
	if len(req.Subjects) == 0 {
		return "subjects must contain at least one item"
	}
	for _, subject := range req.Subjects {
		if strings.TrimSpace(subject) == "" {
			return "subjects must not contain empty values"
		}
	}
	if strings.TrimSpace(req.LearningGoals) == "" {
		return "learning_goals is required"
	}
	if req.MaxHourlyRate != nil && *req.MaxHourlyRate < 0 {
		return "max_hourly_rate must be 0 or greater"
	}
	if strings.TrimSpace(req.Timezone) == "" {
		return "timezone is required"
	}
	return ""
}

func validateTutorOnboardingRequest(req tutorOnboardingRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "full_name is required"
	}
	if strings.TrimSpace(req.Bio) == "" {
		return "bio is required"
	}
	if len(req.Subjects) == 0 {
		return "subjects must contain at least one item"
	}
	for _, subject := range req.Subjects {
		if strings.TrimSpace(subject) == "" {
			return "subjects must not contain empty values"
		}
	}
	if len(req.Qualifications) == 0 {
		return "qualifications must contain at least one item"
	}
	for _, qualification := range req.Qualifications {
		if strings.TrimSpace(qualification) == "" {
			return "qualifications must not contain empty values"
		}
	}
	if req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	if req.HourlyRate <= 0 {
		return "hourly_rate must be greater than 0"
	}
	if strings.TrimSpace(req.Timezone) == "" {
		return "timezone is required"
	}
	return ""
}

func validateStudentProfileUpdateRequest(req updateStudentProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.GradeLevel != nil {
		if err := validateGradeLevel(*req.GradeLevel); err != "" {
			return err
		}
	}
	if req.Subjects != nil {
		for _, subject := range *req.Subjects {
			if strings.TrimSpace(subject) == "" {
				return "subjects must not contain empty values"
			}
		}
	}
	if req.LearningGoals != nil && strings.TrimSpace(*req.LearningGoals) == "" {
		return "learning_goals must not be empty"
	}
	if req.MaxHourlyRate != nil && *req.MaxHourlyRate < 0 {
		return "max_hourly_rate must be 0 or greater"
	}
	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) == "" {
		return "timezone must not be empty"
	}
	return ""
}

func validateTutorProfileUpdateRequest(req updateTutorProfileRequest) string {
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return "full_name must not be empty"
	}
	if req.Bio != nil && strings.TrimSpace(*req.Bio) == "" {
		return "bio must not be empty"
	}
	if req.Subjects != nil {
		for _, subject := range *req.Subjects {
			if strings.TrimSpace(subject) == "" {
				return "subjects must not contain empty values"
			}
		}
	}
	if req.Qualifications != nil {
		for _, qualification := range *req.Qualifications {
			if strings.TrimSpace(qualification) == "" {
				return "qualifications must not contain empty values"
			}
		}
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return "experience_years must be 0 or greater"
	}
	if req.HourlyRate != nil && *req.HourlyRate <= 0 {
		return "hourly_rate must be greater than 0"
	}
	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) == "" {
		return "timezone must not be empty"
	}
	return ""
}

func validateGradeLevel(level string) string {
	if _, ok := allowedGradeLevels[strings.TrimSpace(level)]; !ok {
		return "grade_level must be one of: elementary, middle, high_school, college, adult"
	}
	return ""
}
