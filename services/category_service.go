package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// CategoryService maintains the competitive band catalog and answers the
// "which category does ranking position N fall into" question.
type CategoryService interface {
	Create(ctx context.Context, actor Actor, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, actor Actor, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, actor Actor, id int) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	ListAll(ctx context.Context) ([]*models.Category, error)
	Resolve(ctx context.Context, rankingPosition int) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, logger *slog.Logger) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, actor Actor, category *models.Category) (*models.Category, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrCategoryNameConflict, category.Name)
		}
		return nil, err
	}
	s.logger.Info("category created",
		slog.Int("category_id", category.ID), slog.String("name", category.Name))
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, category *models.Category) (*models.Category, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNotFound):
			return nil, fmt.Errorf("%w: category %d", ErrCategoryNotFound, category.ID)
		case errors.Is(err, repositories.ErrCategoryNameConflict):
			return nil, fmt.Errorf("%w: %q", ErrCategoryNameConflict, category.Name)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, actor Actor, id int) error {
	if !actor.Admin {
		return ErrAdminRequired
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return fmt.Errorf("%w: category %d", ErrCategoryNotFound, id)
		}
		return err
	}
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrCategoryNotFound, id)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListAll(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

// Resolve maps a ranking position onto the catalog. A position no category
// contains resolves to not-found, mirroring the nil assignment at enrollment.
func (s *categoryService) Resolve(ctx context.Context, rankingPosition int) (*models.Category, error) {
	if rankingPosition < 1 {
		return nil, fmt.Errorf("%w: ranking position must be positive", ErrValidationFailed)
	}
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	category := ResolveCategory(rankingPosition, categories)
	if category == nil {
		return nil, fmt.Errorf("%w: no category contains position %d", ErrCategoryNotFound, rankingPosition)
	}
	return category, nil
}

func validateCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidationFailed)
	}
	if c.MinPosition < 1 || c.MaxPosition < c.MinPosition {
		return fmt.Errorf("%w: category range [%d, %d] is invalid", ErrValidationFailed, c.MinPosition, c.MaxPosition)
	}
	return nil
}
