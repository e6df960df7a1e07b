package repository

import (
	"context"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/jackc/pgx/v5"
)

const availabilityColumns = `id, tutor_id, day_of_week, start_time, end_time, timezone, is_active,
		created_at, updated_at`

type CreateAvailabilityRuleInput struct {
	TutorID   int64
	DayOfWeek int
	StartTime string
	EndTime   string
	Timezone  string
}

type UpdateAvailabilityRuleInput struct {
	DayOfWeek *int
	StartTime *string
	EndTime   *string
	Timezone  *string
	IsActive  *bool
}

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) Create(ctx context.Context, input CreateAvailabilityRuleInput) (*models.AvailabilityRule, error) {
	query := `
		INSERT INTO availability_rules (tutor_id, day_of_week, start_time, end_time, timezone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + availabilityColumns
	return r.scan(r.db.QueryRow(ctx, query,
		input.TutorID,
		input.DayOfWeek,
		input.StartTime,
		input.EndTime,
		input.Timezone,
	))
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, ruleID int64) (*models.AvailabilityRule, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availability_rules
		WHERE id = $1
	`
	return r.scan(r.db.QueryRow(ctx, query, ruleID))
}

func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorID int64) ([]models.AvailabilityRule, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availability_rules
		WHERE tutor_id = $1
		ORDER BY day_of_week ASC, start_time ASC, id ASC
	`
	return r.list(ctx, query, tutorID)
}

// ListActiveByTutor feeds the slot calculator; inactive rules never produce
// slots.
func (r *AvailabilityRepository) ListActiveByTutor(ctx context.Context, tutorID int64) ([]models.AvailabilityRule, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availability_rules
		WHERE tutor_id = $1 AND is_active = TRUE
		ORDER BY day_of_week ASC, start_time ASC, id ASC
	`
	return r.list(ctx, query, tutorID)
}

func (r *AvailabilityRepository) Update(ctx context.Context, ruleID int64, input UpdateAvailabilityRuleInput) (*models.AvailabilityRule, error) {
	query := `
		UPDATE availability_rules
		SET day_of_week = COALESCE($1, day_of_week),
			start_time = COALESCE($2, start_time),
			end_time = COALESCE($3, end_time),
			timezone = COALESCE($4, timezone),
			is_active = COALESCE($5, is_active),
			updated_at = NOW()
		WHERE id = $6
		RETURNING ` + availabilityColumns
	return r.scan(r.db.QueryRow(ctx, query,
		input.DayOfWeek,
		input.StartTime,
		input.EndTime,
		input.Timezone,
		input.IsActive,
		ruleID,
	))
}

func (r *AvailabilityRepository) Delete(ctx context.Context, ruleID int64) error {
	query := `DELETE FROM availability_rules WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, ruleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AvailabilityRepository) list(ctx context.Context, query string, args ...any) ([]models.AvailabilityRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]models.AvailabilityRule, 0)
	for rows.Next() {
		rule, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AvailabilityRepository) scan(row rowScanner) (*models.AvailabilityRule, error) {
	var rule models.AvailabilityRule
	err := row.Scan(
		&rule.ID,
		&rule.TutorID,
		&rule.DayOfWeek,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Timezone,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
