package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
)

const tutorProfileColumns = `id, user_id, full_name, avatar_url, bio, subjects, qualifications,
		   experience_years, hourly_rate, timezone, rating, total_reviews, total_lessons,
		   approval_status, onboarding_complete, created_at, updated_at`

type TutorOnboardingInput struct {
	FullName        string
	Bio             string
	Subjects        []string
	Qualifications  []string
	ExperienceYears int
	HourlyRate      float64
	Timezone        string
}

type UpdateTutorProfileInput struct {
	FullName        *string
	AvatarURL       *string
	Bio             *string
	Subjects        *[]string
	Qualifications  *[]string
	ExperienceYears *int
	HourlyRate      *float64
	Timezone        *string
}

type TutorListFilter struct {
	Subject    string
	MinRating  float64
	MaxPrice   float64
	Experience int
	Offset     int
	Limit      int
}

type TutorProfileRepository struct {
	db DBTX
}

func NewTutorProfileRepository(db DBTX) *TutorProfileRepository {
	return &TutorProfileRepository{db: db}
}

func (r *TutorProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO tutor_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *TutorProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.TutorProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tutor_profiles
		WHERE user_id = $1
	`, tutorProfileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *TutorProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req TutorOnboardingInput) (*models.TutorProfile, error) {
	query := fmt.Sprintf(`
		UPDATE tutor_profiles
		SET full_name = $1,
			bio = $2,
			subjects = $3,
			qualifications = $4,
			experience_years = $5,
			hourly_rate = $6,
			timezone = $7,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING %s
	`, tutorProfileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query,
		req.FullName,
		req.Bio,
		req.Subjects,
		req.Qualifications,
		req.ExperienceYears,
		req.HourlyRate,
		req.Timezone,
		userID,
	))
}

func (r *TutorProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateTutorProfileInput) (*models.TutorProfile, error) {
	query := fmt.Sprintf(`
		UPDATE tutor_profiles
		SET full_name = COALESCE($1, full_name),
			avatar_url = COALESCE($2, avatar_url),
			bio = COALESCE($3, bio),
			subjects = COALESCE($4, subjects),
			qualifications = COALESCE($5, qualifications),
			experience_years = COALESCE($6, experience_years),
			hourly_rate = COALESCE($7, hourly_rate),
			timezone = COALESCE($8, timezone),
			updated_at = NOW()
		WHERE user_id = $9
		RETURNING %s
	`, tutorProfileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query,
		req.FullName,
		req.AvatarURL,
		req.Bio,
		req.Subjects,
		req.Qualifications,
		req.ExperienceYears,
		req.HourlyRate,
		req.Timezone,
		userID,
	))
}

// List returns approved, fully onboarded tutors matching the filter plus the
// total count before pagination.
func (r *TutorProfileRepository) List(ctx context.Context, filter TutorListFilter) ([]models.TutorProfile, int, error) {
	args := []any{}
	whereParts := []string{"approval_status = 'approved'", "onboarding_complete = TRUE"}

	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		args = append(args, subject)
		whereParts = append(whereParts, fmt.Sprintf("$%d ILIKE ANY(subjects)", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		whereParts = append(whereParts, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		whereParts = append(whereParts, fmt.Sprintf("hourly_rate <= $%d", len(args)))
	}
	if filter.Experience > 0 {
		args = append(args, filter.Experience)
		whereParts = append(whereParts, fmt.Sprintf("experience_years >= $%d", len(args)))
	}

	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tutor_profiles WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM tutor_profiles
		WHERE %s
		ORDER BY rating DESC NULLS LAST, total_reviews DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, tutorProfileColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.TutorProfile, 0)
	for rows.Next() {
		profile, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *TutorProfileRepository) ListAll(ctx context.Context) ([]models.TutorProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tutor_profiles
		WHERE approval_status = 'approved' AND onboarding_complete = TRUE
		ORDER BY id ASC
	`, tutorProfileColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.TutorProfile, 0)
	for rows.Next() {
		profile, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// RefreshRating recomputes the aggregate rating and review count from the
// reviews table. Runs inside the review-creation transaction.
func (r *TutorProfileRepository) RefreshRating(ctx context.Context, tutorID int64) error {
	query := `
		UPDATE tutor_profiles
		SET rating = sub.avg_rating,
			total_reviews = sub.review_count,
			updated_at = NOW()
		FROM (
			SELECT AVG(rating)::numeric(3,2) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			WHERE tutor_id = $1
		) AS sub
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, tutorID)
	return err
}

func (r *TutorProfileRepository) IncrementLessons(ctx context.Context, tutorID int64) error {
	query := `
		UPDATE tutor_profiles
		SET total_lessons = total_lessons + 1, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, tutorID)
	return err
}

func (r *TutorProfileRepository) SetApprovalStatus(ctx context.Context, tutorID int64, status string) (*models.TutorProfile, error) {
	query := fmt.Sprintf(`
		UPDATE tutor_profiles
		SET approval_status = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING %s
	`, tutorProfileColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, tutorID, status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TutorProfileRepository) scanOne(row rowScanner) (*models.TutorProfile, error) {
	return r.scanRow(row)
}

func (r *TutorProfileRepository) scanRow(row rowScanner) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Subjects,
		&profile.Qualifications,
		&profile.ExperienceYears,
		&profile.HourlyRate,
		&profile.Timezone,
		&profile.Rating,
		&profile.TotalReviews,
		&profile.TotalLessons,
		&profile.ApprovalStatus,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
