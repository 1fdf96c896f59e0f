package models

import (
	"encoding/json"
	"time"
)

// ChampionshipStatus matches the championship_status ENUM in the database.
type ChampionshipStatus string

const (
	ChampionshipDraft    ChampionshipStatus = "draft"
	ChampionshipActive   ChampionshipStatus = "active"
	ChampionshipFinished ChampionshipStatus = "finished"
)

type ChampionshipMode string

const (
	ModeSingles ChampionshipMode = "singles"
	ModeDoubles ChampionshipMode = "doubles"
)

// StageDefinition is one element of a championship's configured format.
// The ordered list is stored as JSON in the format_json column.
type StageDefinition struct {
	Type         StageType `json:"type"`
	MinEntries   int       `json:"min_entries"`
	MaxEntries   int       `json:"max_entries"`
	AdvanceCount int       `json:"advance_count"`
}

type Championship struct {
	ID          int                `json:"id" db:"id"`
	Name        string             `json:"name" db:"name"`
	Description *string            `json:"description,omitempty" db:"description"`
	Mode        ChampionshipMode   `json:"mode" db:"mode"`
	Status      ChampionshipStatus `json:"status" db:"status"`
	FormatJSON  string             `json:"-" db:"format_json"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	// Eligibility filters applied at enrollment. Nil means unrestricted.
	Gender     *Gender `json:"gender,omitempty" db:"gender"`
	MinAge     *int    `json:"min_age,omitempty" db:"min_age"`
	MaxAge     *int    `json:"max_age,omitempty" db:"max_age"`
	MinRanking *int    `json:"min_ranking,omitempty" db:"min_ranking"`
	MaxRanking *int    `json:"max_ranking,omitempty" db:"max_ranking"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Optional linked data, populated by the service layer.
	Format  []StageDefinition `json:"format,omitempty" db:"-"`
	Stages  []Stage           `json:"stages,omitempty" db:"-"`
	Entries []Entry           `json:"entries,omitempty" db:"-"`
}

// ParseFormat decodes the stored stage definition list.
func (c *Championship) ParseFormat() ([]StageDefinition, error) {
	if c.FormatJSON == "" {
		return nil, nil
	}
	var defs []StageDefinition
	if err := json.Unmarshal([]byte(c.FormatJSON), &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
