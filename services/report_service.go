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

// FileReportInput is the submission payload. Kind decides which of the
// optional fields are required; the service validates the variant
// exhaustively instead of guessing from what was filled in.
type FileReportInput struct {
	Kind          models.ReportKind `json:"kind"`
	MatchID       *int              `json:"match_id,omitempty"`
	Motive        *string           `json:"motive,omitempty"`
	Justification *string           `json:"justification,omitempty"`
	Body          *string           `json:"body,omitempty"`
}

// ReportService manages the administrative ticket queue. Result disputes are
// normally opened through the result service, which also freezes the match;
// federation requests and bug reports come in directly.
type ReportService interface {
	File(ctx context.Context, actor Actor, input FileReportInput) (*models.Report, error)
	GetByID(ctx context.Context, actor Actor, id int) (*models.Report, error)
	ListOpen(ctx context.Context, actor Actor, kind *models.ReportKind) ([]*models.Report, error)
	Close(ctx context.Context, actor Actor, id int) error
}

type reportService struct {
	reportRepo repositories.ReportRepository
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewReportService(
	reportRepo repositories.ReportRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

func (s *reportService) File(ctx context.Context, actor Actor, input FileReportInput) (*models.Report, error) {
	if err := validateReportVariant(input); err != nil {
		return nil, err
	}

	reporter, err := s.playerRepo.GetByID(ctx, actor.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, actor.PlayerID)
		}
		return nil, err
	}

	report := &models.Report{
		Kind:          input.Kind,
		Status:        models.ReportOpen,
		ReporterEmail: reporter.Email,
		MatchID:       input.MatchID,
		Motive:        input.Motive,
		Justification: input.Justification,
		Body:          input.Body,
	}
	if err := s.reportRepo.Create(ctx, nil, report); err != nil {
		return nil, err
	}

	s.logger.Info("report filed",
		slog.Int("report_id", report.ID),
		slog.String("kind", string(report.Kind)))
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, actor Actor, id int) (*models.Report, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return nil, fmt.Errorf("%w: report %d", ErrReportNotFound, id)
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) ListOpen(ctx context.Context, actor Actor, kind *models.ReportKind) ([]*models.Report, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	return s.reportRepo.ListOpen(ctx, kind)
}

// Close settles a ticket without touching any match state. Disputes that
// should change a result go through AdminResolveDispute instead, which closes
// its report itself.
func (s *reportService) Close(ctx context.Context, actor Actor, id int) error {
	if !actor.Admin {
		return ErrAdminRequired
	}
	if err := s.reportRepo.Close(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return fmt.Errorf("%w: report %d", ErrReportNotFound, id)
		}
		return err
	}
	return nil
}

// validateReportVariant checks the kind-specific payload. The switch is
// exhaustive over the known kinds; an unknown kind is a validation error.
func validateReportVariant(input FileReportInput) error {
	filled := func(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }

	switch input.Kind {
	case models.ReportResultDispute:
		if input.MatchID == nil || !filled(input.Motive) || !filled(input.Justification) {
			return fmt.Errorf("%w: a result dispute needs match_id, motive and justification", ErrValidationFailed)
		}
	case models.ReportFederationRequest, models.ReportBug:
		if !filled(input.Body) {
			return fmt.Errorf("%w: a %s needs a body", ErrValidationFailed, input.Kind)
		}
		if input.MatchID != nil || input.Motive != nil || input.Justification != nil {
			return fmt.Errorf("%w: %s does not take dispute fields", ErrValidationFailed, input.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown report kind %q", ErrValidationFailed, input.Kind)
	}
	return nil
}
