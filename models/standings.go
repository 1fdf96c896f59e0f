package models

import "time"

// StandingsEntry is one row of a round-robin stage's ranked table. The table
// is a derived view: recomputed from confirmed results and replaced as a
// whole, never edited row by row.
type StandingsEntry struct {
	ID       int `json:"id" db:"id"`
	StageID  int `json:"stage_id" db:"stage_id"`
	EntryID  int `json:"entry_id" db:"entry_id"`
	Wins     int `json:"wins" db:"wins"`
	Losses   int `json:"losses" db:"losses"`
	SetsWon  int `json:"sets_won" db:"sets_won"`
	SetsLost int `json:"sets_lost" db:"sets_lost"`
	SetDiff  int `json:"set_diff" db:"set_diff"`
	Rank     int `json:"rank" db:"rank"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Entry *Entry `json:"entry,omitempty" db:"-"`
}
