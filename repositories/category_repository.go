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
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameConflict = errors.New("category name already exists")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	ListAll(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, min_position, max_position, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		category.Name, category.MinPosition, category.MaxPosition, category.Priority,
	).Scan(&category.ID)
	return r.handleError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, min_position, max_position, priority
		FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.MinPosition, &c.MaxPosition, &c.Priority)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns the catalog in the administrator's priority order, which
// is also the resolver's tie-break order.
func (r *postgresCategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, min_position, max_position, priority
		FROM categories
		ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.MinPosition, &c.MaxPosition, &c.Priority); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *postgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, min_position = $2, max_position = $3, priority = $4
		WHERE id = $5`,
		category.Name, category.MinPosition, category.MaxPosition, category.Priority, category.ID)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "categories_name_key" {
			return ErrCategoryNameConflict
		}
	}
	return err
}
