package gameday

import (
	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/literal"
)

// PlayerAttributes is one <player> row of a players.xml roster. Identity
// fields stay raw strings because they are compared and stored verbatim.
type PlayerAttributes struct {
	ID         string
	First      string
	Last       string
	Num        string
	BoxName    string
	Throws     string // rl
	Bats       string
	Position   string
	Status     string
	TeamAbbrev string
	TeamID     string
	Extra      map[string]literal.Value
}

// ParsePlayers returns every player element in document order.
func ParsePlayers(root *fetch.Element) []PlayerAttributes {
	if root == nil {
		return nil
	}

	var players []PlayerAttributes
	for _, el := range root.Iter("player") {
		a := attrsOf(el)
		players = append(players, PlayerAttributes{
			ID:         a.raw("id"),
			First:      a.raw("first"),
			Last:       a.raw("last"),
			Num:        a.raw("num"),
			BoxName:    a.raw("boxname"),
			Throws:     a.raw("rl"),
			Bats:       a.raw("bats"),
			Position:   a.raw("position"),
			Status:     a.raw("status"),
			TeamAbbrev: a.raw("team_abbrev"),
			TeamID:     a.raw("team_id"),
			Extra:      a.rest(),
		})
	}
	return players
}
