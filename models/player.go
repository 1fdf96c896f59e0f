package models

import "time"

// PlayerRole matches the player_role ENUM in the database.
type PlayerRole string

const (
	RolePlayer PlayerRole = "player"
	RoleAdmin  PlayerRole = "admin"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Player is the federation directory record for a club member. The engine
// reads ranking and eligibility attributes from it and never writes them.
type Player struct {
	ID              int        `json:"id" db:"id"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	Role            PlayerRole `json:"role" db:"role"`
	Gender          Gender     `json:"gender" db:"gender"`
	BirthDate       time.Time  `json:"birth_date" db:"birth_date"`
	RankingPosition int        `json:"ranking_position" db:"ranking_position"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

func (p *Player) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	if at.YearDay() < p.BirthDate.YearDay() {
		years--
	}
	return years
}
