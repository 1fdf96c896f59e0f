package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clubarena/championship-system/models"
)

var ErrResultProposalNotFound = errors.New("result proposal not found")

type ResultProposalRepository interface {
	Create(ctx context.Context, exec SQLExecutor, proposal *models.ResultProposal) error
	GetPendingByMatch(ctx context.Context, matchID int) (*models.ResultProposal, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ResultProposalStatus) error
	DeletePendingByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresResultProposalRepository struct {
	db *sql.DB
}

func NewPostgresResultProposalRepository(db *sql.DB) ResultProposalRepository {
	return &postgresResultProposalRepository{db: db}
}

func (r *postgresResultProposalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultProposalRepository) Create(ctx context.Context, exec SQLExecutor, proposal *models.ResultProposal) error {
	executor := r.getExecutor(exec)
	return executor.QueryRowContext(ctx, `
		INSERT INTO result_proposals (match_id, proposer_player_id, score, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		proposal.MatchID, proposal.ProposerPlayerID, proposal.Score, proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt)
}

func (r *postgresResultProposalRepository) GetPendingByMatch(ctx context.Context, matchID int) (*models.ResultProposal, error) {
	var p models.ResultProposal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, match_id, proposer_player_id, score, status, created_at
		FROM result_proposals
		WHERE match_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		matchID, models.ResultProposalPending, models.ResultProposalDisputed,
	).Scan(&p.ID, &p.MatchID, &p.ProposerPlayerID, &p.Score, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultProposalNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresResultProposalRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ResultProposalStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE result_proposals SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultProposalNotFound)
}

func (r *postgresResultProposalRepository) DeletePendingByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM result_proposals WHERE match_id = $1 AND status = $2`,
		matchID, models.ResultProposalPending)
	return err
}
