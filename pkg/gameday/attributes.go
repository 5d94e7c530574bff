package gameday

import (
	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/literal"
)

// GameAttributes are the root attributes of a game.xml document.
type GameAttributes struct {
	Game          GameID
	Type          literal.Value
	LocalGameTime literal.Value
	GamePK        literal.Value
	GameTimeET    literal.Value
	GamedaySW     literal.Value
	Extra         map[string]literal.Value
}

// ParseGameAttributes reads the root element. The Game key is left for the
// caller to fill in.
func ParseGameAttributes(root *fetch.Element) GameAttributes {
	if root == nil {
		return GameAttributes{}
	}
	a := attrsOf(root)
	ga := GameAttributes{
		Type:          a.take("type"),
		LocalGameTime: a.take("local_game_time"),
		GamePK:        a.take("game_pk"),
		GameTimeET:    a.take("game_time_et"),
		GamedaySW:     a.take("gameday_sw"),
	}
	ga.Extra = a.rest()
	return ga
}
