package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubarena/championship-system/models"
	"github.com/lib/pq"
)

var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryAlreadyExists = errors.New("player is already enrolled in this championship")
	ErrEntryPlayerInvalid = errors.New("entry player conflict or invalid")
	ErrEntryChampsInvalid = errors.New("entry championship conflict or invalid")
)

type EntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	GetByID(ctx context.Context, id int) (*models.Entry, error)
	ListByChampionship(ctx context.Context, championshipID int, status *models.EntryStatus) ([]*models.Entry, error)
	FindByPlayer(ctx context.Context, championshipID, playerID int) (*models.Entry, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EntryStatus) error
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const entryColumns = `
	id, championship_id, player1_id, player2_id, seed, status, category_id, created_at`

func (r *postgresEntryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, `
		INSERT INTO entries (championship_id, player1_id, player2_id, seed, status, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		entry.ChampionshipID, entry.Player1ID, entry.Player2ID,
		entry.Seed, entry.Status, entry.CategoryID,
	).Scan(&entry.ID, &entry.CreatedAt)
	return r.handleError(err)
}

func (r *postgresEntryRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Entry, error) {
	var e models.Entry
	err := row.Scan(
		&e.ID, &e.ChampionshipID, &e.Player1ID, &e.Player2ID,
		&e.Seed, &e.Status, &e.CategoryID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresEntryRepository) ListByChampionship(ctx context.Context, championshipID int, status *models.EntryStatus) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE championship_id = $1`
	args := []interface{}{championshipID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY seed ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for championship %d: %w", championshipID, err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		e, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindByPlayer locates the entry a player competes under in a championship,
// whichever slot of a doubles pair they occupy.
func (r *postgresEntryRepository) FindByPlayer(ctx context.Context, championshipID, playerID int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE championship_id = $1 AND (player1_id = $2 OR player2_id = $2)
		LIMIT 1`
	return r.scan(r.db.QueryRowContext(ctx, query, championshipID, playerID))
}

func (r *postgresEntryRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EntryStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE entries SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "entries_championship_player_key":
			return ErrEntryAlreadyExists
		case "entries_player1_id_fkey", "entries_player2_id_fkey":
			return ErrEntryPlayerInvalid
		case "entries_championship_id_fkey":
			return ErrEntryChampsInvalid
		}
	}
	return err
}
