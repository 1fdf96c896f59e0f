package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubarena/championship-system/models"
)

var ErrStageNotFound = errors.New("stage not found")

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Stage, error)
	GetActiveByChampionship(ctx context.Context, championshipID int) (*models.Stage, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.StageStatus) error
	SetSeeds(ctx context.Context, exec SQLExecutor, stageID int, orderedEntryIDs []int) error
	ListSeeds(ctx context.Context, stageID int) ([]int, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stages (championship_id, stage_index, stage_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query,
		stage.ChampionshipID, stage.Index, stage.Type, stage.Status,
	).Scan(&stage.ID, &stage.CreatedAt)
}

func (r *postgresStageRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Stage, error) {
	var s models.Stage
	err := row.Scan(&s.ID, &s.ChampionshipID, &s.Index, &s.Type, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `
		SELECT id, championship_id, stage_index, stage_type, status, created_at
		FROM stages WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresStageRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Stage, error) {
	query := `
		SELECT id, championship_id, stage_index, stage_type, status, created_at
		FROM stages WHERE championship_id = $1
		ORDER BY stage_index ASC`
	rows, err := r.db.QueryContext(ctx, query, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for championship %d: %w", championshipID, err)
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		s, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) GetActiveByChampionship(ctx context.Context, championshipID int) (*models.Stage, error) {
	query := `
		SELECT id, championship_id, stage_index, stage_type, status, created_at
		FROM stages WHERE championship_id = $1 AND status = $2
		ORDER BY stage_index DESC LIMIT 1`
	return r.scan(r.db.QueryRowContext(ctx, query, championshipID, models.StageActive))
}

func (r *postgresStageRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.StageStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE stages SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

// SetSeeds stores the stage's entry list in seed order (position 1 first).
func (r *postgresStageRepository) SetSeeds(ctx context.Context, exec SQLExecutor, stageID int, orderedEntryIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM stage_seeds WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear seeds for stage %d: %w", stageID, err)
	}
	for pos, entryID := range orderedEntryIDs {
		if _, err := executor.ExecContext(ctx,
			`INSERT INTO stage_seeds (stage_id, entry_id, seed_position) VALUES ($1, $2, $3)`,
			stageID, entryID, pos+1); err != nil {
			return fmt.Errorf("failed to insert seed %d for stage %d: %w", pos+1, stageID, err)
		}
	}
	return nil
}

func (r *postgresStageRepository) ListSeeds(ctx context.Context, stageID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_id FROM stage_seeds WHERE stage_id = $1 ORDER BY seed_position ASC`, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
