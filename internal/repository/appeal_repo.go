package repository

import (
	"context"

	"github.com/arian-h/TutorAppBack/internal/models"
)

const appealColumns = `id, penalty_id, student_id, message, status, resolved_by, resolution_note,
		created_at, updated_at`

type CreateAppealInput struct {
	PenaltyID int64
	StudentID int64
	Message   string
}

type ResolveAppealInput struct {
	AppealID       int64
	Status         string
	ResolvedBy     int64
	ResolutionNote *string
}

type AppealRepository struct {
	db DBTX
}

func NewAppealRepository(db DBTX) *AppealRepository {
	return &AppealRepository{db: db}
}

func (r *AppealRepository) Create(ctx context.Context, input CreateAppealInput) (*models.Appeal, error) {
	query := `
		INSERT INTO appeals (penalty_id, student_id, message, status)
		VALUES ($1, $2, $3, 'open')
		RETURNING ` + appealColumns
	return r.scan(r.db.QueryRow(ctx, query, input.PenaltyID, input.StudentID, input.Message))
}

func (r *AppealRepository) GetByID(ctx context.Context, appealID int64) (*models.Appeal, error) {
	query := `
		SELECT ` + appealColumns + `
		FROM appeals
		WHERE id = $1
	`
	return r.scan(r.db.QueryRow(ctx, query, appealID))
}

func (r *AppealRepository) GetByIDForUpdate(ctx context.Context, appealID int64) (*models.Appeal, error) {
	query := `
		SELECT ` + appealColumns + `
		FROM appeals
		WHERE id = $1
		FOR UPDATE
	`
	return r.scan(r.db.QueryRow(ctx, query, appealID))
}

func (r *AppealRepository) ExistsForPenalty(ctx context.Context, penaltyID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM appeals WHERE penalty_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, penaltyID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AppealRepository) ListOpen(ctx context.Context) ([]models.Appeal, error) {
	query := `
		SELECT ` + appealColumns + `
		FROM appeals
		WHERE status = 'open'
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appeals := make([]models.Appeal, 0)
	for rows.Next() {
		appeal, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		appeals = append(appeals, *appeal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appeals, nil
}

func (r *AppealRepository) Resolve(ctx context.Context, input ResolveAppealInput) (*models.Appeal, error) {
	query := `
		UPDATE appeals
		SET status = $2, resolved_by = $3, resolution_note = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'open'
		RETURNING ` + appealColumns
	return r.scan(r.db.QueryRow(ctx, query,
		input.AppealID,
		input.Status,
		input.ResolvedBy,
		input.ResolutionNote,
	))
}

func (r *AppealRepository) scan(row rowScanner) (*models.Appeal, error) {
	var appeal models.Appeal
	err := row.Scan(
		&appeal.ID,
		&appeal.PenaltyID,
		&appeal.StudentID,
		&appeal.Message,
		&appeal.Status,
		&appeal.ResolvedBy,
		&appeal.ResolutionNote,
		&appeal.CreatedAt,
		&appeal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}
