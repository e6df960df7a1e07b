package repository

import (
	"context"

	"github.com/arian-h/TutorAppBack/internal/models"
)

type StudentOnboardingInput struct {
	FullName      string
	GradeLevel    string
	Subjects      []string
	LearningGoals string
	MaxHourlyRate *float64
	Timezone      string
}

type UpdateStudentProfileInput struct {
	FullName      *string
	AvatarURL     *string
	GradeLevel    *string
	Subjects      *[]string
	LearningGoals *string
	MaxHourlyRate *float64
	Timezone      *string
}

type StudentProfileRepository struct {
	db DBTX
}

func NewStudentProfileRepository(db DBTX) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

func (r *StudentProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO student_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *StudentProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	query := `
		SELECT id, user_id, full_name, avatar_url, grade_level, subjects, learning_goals,
			   max_hourly_rate, timezone, onboarding_complete, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`
	var profile models.StudentProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.GradeLevel,
		&profile.Subjects,
		&profile.LearningGoals,
		&profile.MaxHourlyRate,
		&profile.Timezone,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *StudentProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req StudentOnboardingInput) (*models.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET full_name = $1,
			grade_level = $2,
			subjects = $3,
			learning_goals = $4,
			max_hourly_rate = $5,
			timezone = $6,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING id, user_id, full_name, avatar_url, grade_level, subjects, learning_goals,
				  max_hourly_rate, timezone, onboarding_complete, created_at, updated_at
	`
	var profile models.StudentProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.GradeLevel,
		req.Subjects,
		req.LearningGoals,
		req.MaxHourlyRate,
		req.Timezone,
		userID,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.GradeLevel,
		&profile.Subjects,
		&profile.LearningGoals,
		&profile.MaxHourlyRate,
		&profile.Timezone,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *StudentProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateStudentProfileInput) (*models.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET full_name = COALESCE($1, full_name),
			avatar_url = COALESCE($2, avatar_url),
			grade_level = COALESCE($3, grade_level),
			subjects = COALESCE($4, subjects),
			learning_goals = COALESCE($5, learning_goals),
			max_hourly_rate = COALESCE($6, max_hourly_rate),
			timezone = COALESCE($7, timezone),
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING id, user_id, full_name, avatar_url, grade_level, subjects, learning_goals,
				  max_hourly_rate, timezone, onboarding_complete, created_at, updated_at
	`
	var profile models.StudentProfile
	err := r.db.QueryRow(ctx, query,
		req.FullName,
		req.AvatarURL,
		req.GradeLevel,
		req.Subjects,
		req.LearningGoals,
		req.MaxHourlyRate,
		req.Timezone,
		userID,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.GradeLevel,
		&profile.Subjects,
		&profile.LearningGoals,
		&profile.MaxHourlyRate,
		&profile.Timezone,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
