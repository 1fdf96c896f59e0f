package models

import "time"

type ResultProposalStatus string

const (
	ResultProposalPending   ResultProposalStatus = "pending"
	ResultProposalConfirmed ResultProposalStatus = "confirmed"
	ResultProposalDisputed  ResultProposalStatus = "disputed"
)

// ResultProposal is one side's claimed score for a match, awaiting the
// opponent's confirmation or a dispute.
type ResultProposal struct {
	ID               int                  `json:"id" db:"id"`
	MatchID          int                  `json:"match_id" db:"match_id"`
	ProposerPlayerID int                  `json:"proposer_player_id" db:"proposer_player_id"`
	Score            string               `json:"score" db:"score"`
	Status           ResultProposalStatus `json:"status" db:"status"`
	CreatedAt        time.Time            `json:"created_at" db:"created_at"`
}
