package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubarena/championship-system/models"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepository interface {
	Create(ctx context.Context, exec SQLExecutor, report *models.Report) error
	GetByID(ctx context.Context, id int) (*models.Report, error)
	GetOpenByMatchAndKind(ctx context.Context, matchID int, kind models.ReportKind) (*models.Report, error)
	ListOpen(ctx context.Context, kind *models.ReportKind) ([]*models.Report, error)
	Close(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

func (r *postgresReportRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const reportColumns = `
	id, kind, status, reporter_email, match_id, motive, justification, body,
	created_at, closed_at`

func (r *postgresReportRepository) Create(ctx context.Context, exec SQLExecutor, report *models.Report) error {
	executor := r.getExecutor(exec)
	return executor.QueryRowContext(ctx, `
		INSERT INTO reports (kind, status, reporter_email, match_id, motive, justification, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		report.Kind, report.Status, report.ReporterEmail,
		report.MatchID, report.Motive, report.Justification, report.Body,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *postgresReportRepository) scan(row interface{ Scan(...interface{}) error }) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(
		&rep.ID, &rep.Kind, &rep.Status, &rep.ReporterEmail,
		&rep.MatchID, &rep.Motive, &rep.Justification, &rep.Body,
		&rep.CreatedAt, &rep.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *postgresReportRepository) GetByID(ctx context.Context, id int) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresReportRepository) GetOpenByMatchAndKind(ctx context.Context, matchID int, kind models.ReportKind) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
		WHERE match_id = $1 AND kind = $2 AND status = $3
		ORDER BY created_at DESC, id DESC LIMIT 1`
	return r.scan(r.db.QueryRowContext(ctx, query, matchID, kind, models.ReportOpen))
}

func (r *postgresReportRepository) ListOpen(ctx context.Context, kind *models.ReportKind) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status = $1`
	args := []interface{}{models.ReportOpen}
	if kind != nil {
		query += ` AND kind = $2`
		args = append(args, *kind)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		rep, scanErr := r.scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *postgresReportRepository) Close(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE reports SET status = $1, closed_at = $2 WHERE id = $3 AND status = $4`,
		models.ReportClosed, time.Now(), id, models.ReportOpen)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrReportNotFound)
}
