package models

import "time"

// NegotiationStatus is the scheduling sub-state of a match.
type NegotiationStatus string

const (
	NegotiationNoProposal      NegotiationStatus = "no_proposal"
	NegotiationProposalPending NegotiationStatus = "proposal_pending"
	NegotiationConfirmed       NegotiationStatus = "confirmed"
)

// ResultStatus is the result-agreement sub-state of a match.
type ResultStatus string

const (
	ResultUnplayed  ResultStatus = "unplayed"
	ResultProposed  ResultStatus = "result_proposed"
	ResultConfirmed ResultStatus = "result_confirmed"
	ResultDisputed  ResultStatus = "disputed"
)

type Match struct {
	ID           int     `json:"id" db:"id"`
	StageID      int     `json:"stage_id" db:"stage_id"`
	Round        int     `json:"round" db:"round"`
	OrderInRound int     `json:"order_in_round" db:"order_in_round"`
	BracketUID   *string `json:"bracket_uid,omitempty" db:"bracket_uid"`

	// Entry slots. Nil while the slot still waits for a feeder match.
	Entry1ID *int `json:"entry1_id,omitempty" db:"entry1_id"`
	Entry2ID *int `json:"entry2_id,omitempty" db:"entry2_id"`

	// Feeder matches whose winners fill the corresponding slot.
	SourceMatch1ID *int `json:"source_match1_id,omitempty" db:"source_match1_id"`
	SourceMatch2ID *int `json:"source_match2_id,omitempty" db:"source_match2_id"`

	// IsBye marks a virtual match: the single entry advances without play.
	IsBye bool `json:"is_bye" db:"is_bye"`

	NegotiationStatus NegotiationStatus `json:"negotiation_status" db:"negotiation_status"`
	ScheduledStart    *time.Time        `json:"scheduled_start,omitempty" db:"scheduled_start"`
	ScheduledEnd      *time.Time        `json:"scheduled_end,omitempty" db:"scheduled_end"`

	ResultStatus  ResultStatus `json:"result_status" db:"result_status"`
	Score         *string      `json:"score,omitempty" db:"score"`
	WinnerEntryID *int         `json:"winner_entry_id,omitempty" db:"winner_entry_id"`

	// Version guards every negotiation/result write (optimistic lock).
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Playable reports whether both slots are filled and the match needs a
// real result (byes never do).
func (m *Match) Playable() bool {
	return !m.IsBye && m.Entry1ID != nil && m.Entry2ID != nil
}

// HasEntry reports whether the given entry occupies one of the match slots.
func (m *Match) HasEntry(entryID int) bool {
	if m.Entry1ID != nil && *m.Entry1ID == entryID {
		return true
	}
	return m.Entry2ID != nil && *m.Entry2ID == entryID
}
