// Package store defines the identity cache contract shared by the in-memory,
// PostgreSQL and Redis-backed implementations.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by lookups that match nothing.
	ErrNotFound = errors.New("not found in identity store")

	// ErrConflict is returned when a write would break a uniqueness rule,
	// such as two teams sharing an abbreviation.
	ErrConflict = errors.New("identity store conflict")
)

// PlayerQuery selects a player. GDID matches exactly; FirstName and LastName
// match as case-insensitive substrings. Empty fields are ignored. When several
// players match, the earliest stored one wins.
type PlayerQuery struct {
	GDID      string
	FirstName string
	LastName  string
}

// Matches applies the query to p.
func (q PlayerQuery) Matches(p *Player) bool {
	if q.GDID != "" && p.GDID != q.GDID {
		return false
	}
	return containsFold(p.FirstName, q.FirstName) && containsFold(p.LastName, q.LastName)
}

// TeamQuery selects a team by remote id or abbreviation, both exact. An
// empty query matches no team.
type TeamQuery struct {
	GDID   string
	Abbrev string
}

// Empty reports whether neither field is set.
func (q TeamQuery) Empty() bool {
	return q.GDID == "" && q.Abbrev == ""
}

func (q TeamQuery) Matches(t *Team) bool {
	if q.Empty() {
		return false
	}
	if q.GDID != "" && t.GDID != q.GDID {
		return false
	}
	return q.Abbrev == "" || t.Abbrev == q.Abbrev
}

// Store is the identity cache. Writes may be buffered until Flush; Close
// flushes and releases the handle.
type Store interface {
	FindPlayer(ctx context.Context, q PlayerQuery) (*Player, error)
	CreatePlayer(ctx context.Context, p *Player) error
	UpdatePlayer(ctx context.Context, p *Player) error
	FindTeam(ctx context.Context, q TeamQuery) (*Team, error)
	CreateTeam(ctx context.Context, t *Team) error
	Flush(ctx context.Context) error
	Close() error
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
