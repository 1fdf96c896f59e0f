package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubarena/championship-system/models"
)

var ErrStandingsNotFound = errors.New("standings not found")

type StandingRepository interface {
	ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, entries []*models.StandingsEntry) error
	ListByStage(ctx context.Context, stageID int) ([]*models.StandingsEntry, error)
	DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForStage swaps the whole derived table for a stage. Standings are
// recomputed from confirmed results, never edited incrementally.
func (r *postgresStandingRepository) ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, entries []*models.StandingsEntry) error {
	executor := r.getExecutor(exec)
	if err := r.DeleteByStage(ctx, executor, stageID); err != nil {
		return err
	}
	for _, s := range entries {
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, `
			INSERT INTO standings
				(stage_id, entry_id, wins, losses, sets_won, sets_lost, set_diff, rank, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			stageID, s.EntryID, s.Wins, s.Losses, s.SetsWon, s.SetsLost,
			s.SetDiff, s.Rank, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to insert standing for entry %d: %w", s.EntryID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByStage(ctx context.Context, stageID int) ([]*models.StandingsEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stage_id, entry_id, wins, losses, sets_won, sets_lost, set_diff, rank, updated_at
		FROM standings WHERE stage_id = $1
		ORDER BY rank ASC`,
		stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	standings := make([]*models.StandingsEntry, 0)
	for rows.Next() {
		var s models.StandingsEntry
		if err := rows.Scan(
			&s.ID, &s.StageID, &s.EntryID, &s.Wins, &s.Losses,
			&s.SetsWon, &s.SetsLost, &s.SetDiff, &s.Rank, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		standings = append(standings, &s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM standings WHERE stage_id = $1`, stageID)
	return err
}
