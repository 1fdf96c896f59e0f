package models

import "time"

// ProposalSlot is one candidate play window inside an availability proposal.
type ProposalSlot struct {
	ID         int       `json:"id" db:"id"`
	ProposalID int       `json:"proposal_id" db:"proposal_id"`
	Start      time.Time `json:"start" db:"slot_start"`
	End        time.Time `json:"end" db:"slot_end"`
	Accepted   bool      `json:"accepted" db:"accepted"`
}

// AvailabilityProposal carries the candidate slots one side offers for a
// match. A match holds at most one accepted slot at any time.
type AvailabilityProposal struct {
	ID               int            `json:"id" db:"id"`
	MatchID          int            `json:"match_id" db:"match_id"`
	ProposerPlayerID int            `json:"proposer_player_id" db:"proposer_player_id"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	Slots            []ProposalSlot `json:"slots" db:"-"`
}

// AcceptedSlot returns the accepted slot, or nil when none is accepted yet.
func (p *AvailabilityProposal) AcceptedSlot() *ProposalSlot {
	for i := range p.Slots {
		if p.Slots[i].Accepted {
			return &p.Slots[i]
		}
	}
	return nil
}
