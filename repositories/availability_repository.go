package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubarena/championship-system/models"
)

var (
	ErrAvailabilityProposalNotFound = errors.New("availability proposal not found")
	ErrProposalSlotNotFound         = errors.New("proposal slot not found")
)

type AvailabilityRepository interface {
	Create(ctx context.Context, exec SQLExecutor, proposal *models.AvailabilityProposal) error
	GetByMatch(ctx context.Context, matchID int) (*models.AvailabilityProposal, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	AcceptSlot(ctx context.Context, exec SQLExecutor, proposalID, slotID int) error
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAvailabilityRepository) Create(ctx context.Context, exec SQLExecutor, proposal *models.AvailabilityProposal) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, `
		INSERT INTO availability_proposals (match_id, proposer_player_id)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		proposal.MatchID, proposal.ProposerPlayerID,
	).Scan(&proposal.ID, &proposal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create availability proposal for match %d: %w", proposal.MatchID, err)
	}

	for i := range proposal.Slots {
		slot := &proposal.Slots[i]
		slot.ProposalID = proposal.ID
		err = executor.QueryRowContext(ctx, `
			INSERT INTO proposal_slots (proposal_id, slot_start, slot_end, accepted)
			VALUES ($1, $2, $3, FALSE)
			RETURNING id`,
			proposal.ID, slot.Start, slot.End,
		).Scan(&slot.ID)
		if err != nil {
			return fmt.Errorf("failed to create proposal slot: %w", err)
		}
	}
	return nil
}

func (r *postgresAvailabilityRepository) GetByMatch(ctx context.Context, matchID int) (*models.AvailabilityProposal, error) {
	var p models.AvailabilityProposal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, match_id, proposer_player_id, created_at
		FROM availability_proposals WHERE match_id = $1`,
		matchID,
	).Scan(&p.ID, &p.MatchID, &p.ProposerPlayerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAvailabilityProposalNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, slot_start, slot_end, accepted
		FROM proposal_slots WHERE proposal_id = $1
		ORDER BY slot_start ASC, id ASC`,
		p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for proposal %d: %w", p.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProposalSlot
		if err := rows.Scan(&s.ID, &s.ProposalID, &s.Start, &s.End, &s.Accepted); err != nil {
			return nil, err
		}
		p.Slots = append(p.Slots, s)
	}
	return &p, rows.Err()
}

func (r *postgresAvailabilityRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	// proposal_slots cascade on proposal deletion
	_, err := executor.ExecContext(ctx,
		`DELETE FROM availability_proposals WHERE match_id = $1`, matchID)
	return err
}

// AcceptSlot marks the chosen slot accepted and discards the rest.
func (r *postgresAvailabilityRepository) AcceptSlot(ctx context.Context, exec SQLExecutor, proposalID, slotID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE proposal_slots SET accepted = TRUE WHERE id = $1 AND proposal_id = $2`,
		slotID, proposalID)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrProposalSlotNotFound); err != nil {
		return err
	}
	_, err = executor.ExecContext(ctx,
		`DELETE FROM proposal_slots WHERE proposal_id = $1 AND id <> $2`,
		proposalID, slotID)
	return err
}
