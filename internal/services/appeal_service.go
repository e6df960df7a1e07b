package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arian-h/TutorAppBack/internal/models"
	"github.com/arian-h/TutorAppBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAlreadyAppealed = errors.New("penalty already appealed")

type AppealService struct {
	db          *pgxpool.Pool
	penaltyRepo *repository.PenaltyRepository
	appealRepo  *repository.AppealRepository
}

func NewAppealService(
	db *pgxpool.Pool,
	penaltyRepo *repository.PenaltyRepository,
	appealRepo *repository.AppealRepository,
) *AppealService {
	return &AppealService{
		db:          db,
		penaltyRepo: penaltyRepo,
		appealRepo:  appealRepo,
	}
}

func (s *AppealService) ListPenalties(ctx context.Context, actorID int64, role string) ([]models.Penalty, error) {
	if role != "student" {
		return nil, ErrForbidden
	}
	return s.penaltyRepo.ListByStudent(ctx, actorID)
}

func (s *AppealService) FileAppeal(
	ctx context.Context,
	actorID int64,
	role string,
	penaltyID int64,
	message string,
) (*models.Appeal, error) {
	if role != "student" {
		return nil, ErrForbidden
	}
	trimmed := strings.TrimSpace(message)
	if penaltyID <= 0 || trimmed == "" {
		return nil, ErrInvalidInput
	}

	penalty, err := s.penaltyRepo.GetByID(ctx, penaltyID)
	if err != nil {
		return nil, err
	}
	if penalty.StudentID != actorID {
		return nil, ErrForbidden
	}
	if penalty.Status != "active" {
		return nil, ErrInvalidStateTransition
	}

	exists, err := s.appealRepo.ExistsForPenalty(ctx, penaltyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyAppealed
	}

	return s.appealRepo.Create(ctx, repository.CreateAppealInput{
		PenaltyID: penaltyID,
		StudentID: actorID,
		Message:   trimmed,
	})
}

func (s *AppealService) ListOpenAppeals(ctx context.Context, role string) ([]models.Appeal, error) {
	if role != "admin" {
		return nil, ErrForbidden
	}
	return s.appealRepo.ListOpen(ctx)
}

// ResolveAppeal closes an open appeal and settles its penalty in one
// transaction: an accepted appeal waives the penalty, a rejected one upholds
// it.
func (s *AppealService) ResolveAppeal(
	ctx context.Context,
	adminID int64,
	role string,
	appealID int64,
	decision string,
	note *string,
) (*models.Appeal, error) {
	if role != "admin" {
		return nil, ErrForbidden
	}

	var penaltyStatus string
	switch normalizeToken(decision) {
	case "accept", "accepted":
		decision = "accepted"
		penaltyStatus = "waived"
	case "reject", "rejected":
		decision = "rejected"
		penaltyStatus = "upheld"
	default:
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppealRepo := repository.NewAppealRepository(tx)
	txPenaltyRepo := repository.NewPenaltyRepository(tx)

	appeal, err := txAppealRepo.GetByIDForUpdate(ctx, appealID)
	if err != nil {
		return nil, err
	}
	if appeal.Status != "open" {
		return nil, ErrInvalidStateTransition
	}

	if _, err := txPenaltyRepo.UpdateStatusIfCurrent(ctx, appeal.PenaltyID, "active", penaltyStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	resolved, err := txAppealRepo.Resolve(ctx, repository.ResolveAppealInput{
		AppealID:       appealID,
		Status:         decision,
		ResolvedBy:     adminID,
		ResolutionNote: note,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return resolved, nil
}
