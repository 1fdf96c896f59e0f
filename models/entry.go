package models

import "time"

type EntryStatus string

const (
	EntryActive    EntryStatus = "active"
	EntryWithdrawn EntryStatus = "withdrawn"
)

// Entry is the competing unit of a championship: one player in singles, a
// fixed pair in doubles. Fixtures, standings and brackets all reference
// entries, never individual players.
type Entry struct {
	ID             int         `json:"id" db:"id"`
	ChampionshipID int         `json:"championship_id" db:"championship_id"`
	Player1ID      int         `json:"player1_id" db:"player1_id"`
	Player2ID      *int        `json:"player2_id,omitempty" db:"player2_id"`
	Seed           int         `json:"seed" db:"seed"`
	Status         EntryStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`

	// CategoryID is a derived assignment from the ranking position at
	// enrollment time, resolved through the category catalog.
	CategoryID *int `json:"category_id,omitempty" db:"category_id"`
}

// HasPlayer reports whether the given player competes under this entry.
func (e *Entry) HasPlayer(playerID int) bool {
	if e.Player1ID == playerID {
		return true
	}
	return e.Player2ID != nil && *e.Player2ID == playerID
}
