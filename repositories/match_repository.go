package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubarena/championship-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchVersionConflict means the optimistic version check failed: the
	// match changed between the caller's read and this write.
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
	ErrMatchEntryInvalid    = errors.New("match entry conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Match, error)
	CountPendingResults(ctx context.Context, stageID int) (int, error)
	UpdateNegotiation(ctx context.Context, exec SQLExecutor, id, version int, status models.NegotiationStatus, start, end *time.Time) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id, version int, status models.ResultStatus, score *string, winnerEntryID *int) error
	SetSourceLinks(ctx context.Context, exec SQLExecutor, id int, source1, source2 *int) error
	FillSlotsFromSource(ctx context.Context, exec SQLExecutor, sourceMatchID, winnerEntryID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, stage_id, round, order_in_round, bracket_uid, entry1_id, entry2_id,
	source_match1_id, source_match2_id, is_bye, negotiation_status,
	scheduled_start, scheduled_end, result_status, score, winner_entry_id,
	version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(stage_id, round, order_in_round, bracket_uid, entry1_id, entry2_id,
			 source_match1_id, source_match2_id, is_bye, negotiation_status,
			 result_status, score, winner_entry_id, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1)
		RETURNING id, version, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.StageID, match.Round, match.OrderInRound, match.BracketUID,
		match.Entry1ID, match.Entry2ID, match.SourceMatch1ID, match.SourceMatch2ID,
		match.IsBye, match.NegotiationStatus, match.ResultStatus,
		match.Score, match.WinnerEntryID,
	).Scan(&match.ID, &match.Version, &match.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.StageID, &m.Round, &m.OrderInRound, &m.BracketUID,
		&m.Entry1ID, &m.Entry2ID, &m.SourceMatch1ID, &m.SourceMatch2ID,
		&m.IsBye, &m.NegotiationStatus, &m.ScheduledStart, &m.ScheduledEnd,
		&m.ResultStatus, &m.Score, &m.WinnerEntryID, &m.Version, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE stage_id = $1
		ORDER BY round ASC, order_in_round ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountPendingResults counts real matches of the stage that are not yet
// result-confirmed. Byes never count.
func (r *postgresMatchRepository) CountPendingResults(ctx context.Context, stageID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE stage_id = $1 AND is_bye = FALSE AND result_status <> $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, stageID, models.ResultConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending results for stage %d: %w", stageID, err)
	}
	return count, nil
}

// UpdateNegotiation writes the scheduling sub-state guarded by the match
// version. Zero affected rows means either the match vanished or the version
// moved on; the caller distinguishes by refetching.
func (r *postgresMatchRepository) UpdateNegotiation(ctx context.Context, exec SQLExecutor, id, version int, status models.NegotiationStatus, start, end *time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET negotiation_status = $1, scheduled_start = $2, scheduled_end = $3, version = version + 1
		WHERE id = $4 AND version = $5`
	result, err := executor.ExecContext(ctx, query, status, start, end, id, version)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchVersionConflict)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id, version int, status models.ResultStatus, score *string, winnerEntryID *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET result_status = $1, score = $2, winner_entry_id = $3, version = version + 1
		WHERE id = $4 AND version = $5`
	result, err := executor.ExecContext(ctx, query, status, score, winnerEntryID, id, version)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchVersionConflict)
}

func (r *postgresMatchRepository) SetSourceLinks(ctx context.Context, exec SQLExecutor, id int, source1, source2 *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET source_match1_id = $1, source_match2_id = $2 WHERE id = $3`,
		source1, source2, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// FillSlotsFromSource advances a finalized feeder's winner into the slot of
// the match that references it. COALESCE keeps the write idempotent: when
// both feeders finalize concurrently each retry still fills its own slot
// exactly once and never overwrites an already-filled one.
func (r *postgresMatchRepository) FillSlotsFromSource(ctx context.Context, exec SQLExecutor, sourceMatchID, winnerEntryID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`UPDATE matches SET entry1_id = COALESCE(entry1_id, $1) WHERE source_match1_id = $2`,
		winnerEntryID, sourceMatchID); err != nil {
		return fmt.Errorf("failed to fill slot 1 from source match %d: %w", sourceMatchID, err)
	}
	if _, err := executor.ExecContext(ctx,
		`UPDATE matches SET entry2_id = COALESCE(entry2_id, $1) WHERE source_match2_id = $2`,
		winnerEntryID, sourceMatchID); err != nil {
		return fmt.Errorf("failed to fill slot 2 from source match %d: %w", sourceMatchID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_entry1_id_fkey", "matches_entry2_id_fkey", "matches_winner_entry_id_fkey":
			return ErrMatchEntryInvalid
		case "matches_stage_id_fkey":
			return ErrStageNotFound
		}
	}
	return err
}
