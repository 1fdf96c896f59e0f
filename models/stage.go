package models

import "time"

type StageType string

const (
	StageRoundRobin  StageType = "round_robin"
	StageElimination StageType = "elimination"
)

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
)

type Stage struct {
	ID             int         `json:"id" db:"id"`
	ChampionshipID int         `json:"championship_id" db:"championship_id"`
	Index          int         `json:"index" db:"stage_index"`
	Type           StageType   `json:"type" db:"stage_type"`
	Status         StageStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	// Entries in seed order and the stage's matches, populated by services.
	EntryIDs []int   `json:"entry_ids,omitempty" db:"-"`
	Matches  []Match `json:"matches,omitempty" db:"-"`
}
