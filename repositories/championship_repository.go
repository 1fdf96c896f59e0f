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
	ErrChampionshipNotFound     = errors.New("championship not found")
	ErrChampionshipNameConflict = errors.New("championship name already exists")
)

type ChampionshipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.Championship) error
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	List(ctx context.Context, status *models.ChampionshipStatus) ([]*models.Championship, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ChampionshipStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

func (r *postgresChampionshipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const championshipColumns = `
	id, name, description, mode, status, format_json, gender,
	min_age, max_age, min_ranking, max_ranking, logo_key, created_at`

func (r *postgresChampionshipRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Championship) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO championships
			(name, description, mode, status, format_json, gender, min_age, max_age, min_ranking, max_ranking)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		c.Name, c.Description, c.Mode, c.Status, c.FormatJSON,
		c.Gender, c.MinAge, c.MaxAge, c.MinRanking, c.MaxRanking,
	).Scan(&c.ID, &c.CreatedAt)
	return r.handleError(err)
}

func (r *postgresChampionshipRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Championship, error) {
	var c models.Championship
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Mode, &c.Status, &c.FormatJSON,
		&c.Gender, &c.MinAge, &c.MaxAge, &c.MinRanking, &c.MaxRanking,
		&c.LogoKey, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresChampionshipRepository) List(ctx context.Context, status *models.ChampionshipStatus) ([]*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Championship, 0)
	for rows.Next() {
		c, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *postgresChampionshipRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ChampionshipStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE championships SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE championships SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "championships_name_key" {
			return ErrChampionshipNameConflict
		}
	}
	return err
}
