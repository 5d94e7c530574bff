package store

import "time"

// Team is a franchise known to the identity cache. Abbrev is unique.
type Team struct {
	ID     int64  `json:"id" db:"id"`
	GDID   string `json:"gdid" db:"gdid"`
	Abbrev string `json:"abbrev" db:"abbrev"`
}

// Player maps a remote Gameday id to the attributes last observed on a roster.
type Player struct {
	ID           int64     `json:"id" db:"id"`
	GDID         string    `json:"gdid" db:"gdid"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Number       string    `json:"number" db:"number"`
	BoxName      string    `json:"box_name" db:"box_name"`
	Throws       string    `json:"throws" db:"throws"`
	Bats         string    `json:"bats" db:"bats"`
	Position     string    `json:"position" db:"position"`
	Status       string    `json:"status" db:"status"`
	TeamID       int64     `json:"team_id" db:"team_id"`
	DateModified time.Time `json:"date_modified" db:"date_modified"`
}

// IsPitcher reports whether the roster position is "P".
func (p *Player) IsPitcher() bool {
	return p.Position == "P"
}
