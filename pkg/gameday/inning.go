package gameday

import (
	"fmt"
	"time"

	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/literal"
)

// Game is the root of inning_all.xml.
type Game struct {
	AtBat   literal.Value
	Deck    literal.Value
	Hole    literal.Value
	Ind     literal.Value
	Innings []Inning
	Extra   map[string]literal.Value
}

type Inning struct {
	Num      literal.Value
	AwayTeam literal.Value
	HomeTeam literal.Value
	Next     literal.Value
	AtBats   []AtBat
	Extra    map[string]literal.Value
}

// AtBat is one plate appearance. Half is "top" or "bottom".
type AtBat struct {
	Half         string
	Num          literal.Value
	B            literal.Value
	S            literal.Value
	O            literal.Value
	StartTFS     *time.Time
	StartTFSZulu *time.Time
	Batter       literal.Value
	Stand        literal.Value
	BHeight      literal.Value
	Pitcher      literal.Value
	PThrows      literal.Value
	Des          literal.Value
	DesES        literal.Value
	EventNum     literal.Value
	Event        literal.Value
	EventES      literal.Value
	PlayGUID     literal.Value
	HomeTeamRuns literal.Value
	AwayTeamRuns literal.Value
	Pitches      []Pitch
	Runners      []Runner
	Extra        map[string]literal.Value
}

// Pitch carries the PITCHf/x measurements of one pitch.
type Pitch struct {
	ID             literal.Value
	Des            literal.Value
	DesES          literal.Value
	Type           literal.Value
	TFS            *time.Time
	TFSZulu        *time.Time
	X              literal.Value
	Y              literal.Value
	EventNum       literal.Value
	SvID           literal.Value
	PlayGUID       literal.Value
	StartSpeed     literal.Value
	EndSpeed       literal.Value
	SzTop          literal.Value
	SzBot          literal.Value
	PfxX           literal.Value
	PfxZ           literal.Value
	PX             literal.Value
	PZ             literal.Value
	X0             literal.Value
	Y0             literal.Value
	Z0             literal.Value
	VX0            literal.Value
	VY0            literal.Value
	VZ0            literal.Value
	AX             literal.Value
	AY             literal.Value
	AZ             literal.Value
	BreakY         literal.Value
	BreakAngle     literal.Value
	BreakLength    literal.Value
	PitchType      literal.Value
	TypeConfidence literal.Value
	Zone           literal.Value
	Nasty          literal.Value
	SpinDir        literal.Value
	SpinRate       literal.Value
	CC             literal.Value
	MT             literal.Value
	Extra          map[string]literal.Value
}

type Runner struct {
	ID       literal.Value
	Start    literal.Value
	End      literal.Value
	Event    literal.Value
	EventNum literal.Value
	Extra    map[string]literal.Value
}

// ParseGameTree builds the play-by-play tree. Innings are the <inning>
// children of the root; at-bats are the <atbat> children of each <top> and
// <bottom> half. Other elements (such as <action>) are ignored.
func ParseGameTree(root *fetch.Element) (*Game, error) {
	if root == nil {
		return nil, fmt.Errorf("empty inning document")
	}
	if root.Name != "game" {
		return nil, fmt.Errorf("unexpected root element %q", root.Name)
	}

	a := attrsOf(root)
	game := &Game{
		AtBat: a.take("atBat"),
		Deck:  a.take("deck"),
		Hole:  a.take("hole"),
		Ind:   a.take("ind"),
	}
	game.Extra = a.rest()

	for _, inn := range root.ChildrenNamed("inning") {
		game.Innings = append(game.Innings, parseInning(inn))
	}
	return game, nil
}

func parseInning(el *fetch.Element) Inning {
	a := attrsOf(el)
	inning := Inning{
		Num:      a.take("num"),
		AwayTeam: a.take("away_team"),
		HomeTeam: a.take("home_team"),
		Next:     a.take("next"),
	}
	inning.Extra = a.rest()

	for _, half := range el.Children {
		if half.Name != "top" && half.Name != "bottom" {
			continue
		}
		for _, ab := range half.ChildrenNamed("atbat") {
			inning.AtBats = append(inning.AtBats, parseAtBat(half.Name, ab))
		}
	}
	return inning
}

func parseAtBat(half string, el *fetch.Element) AtBat {
	a := attrsOf(el)
	ab := AtBat{
		Half:         half,
		Num:          a.take("num"),
		B:            a.take("b"),
		S:            a.take("s"),
		O:            a.take("o"),
		StartTFS:     a.timeOfDay("start_tfs"),
		StartTFSZulu: a.instant("start_tfs_zulu"),
		Batter:       a.take("batter"),
		Stand:        a.take("stand"),
		BHeight:      a.take("b_height"),
		Pitcher:      a.take("pitcher"),
		PThrows:      a.take("p_throws"),
		Des:          a.take("des"),
		DesES:        a.take("des_es"),
		EventNum:     a.take("event_num"),
		Event:        a.take("event"),
		EventES:      a.take("event_es"),
		PlayGUID:     a.take("play_guid"),
		HomeTeamRuns: a.take("home_team_runs"),
		AwayTeamRuns: a.take("away_team_runs"),
	}
	ab.Extra = a.rest()

	for _, c := range el.Children {
		switch c.Name {
		case "pitch":
			ab.Pitches = append(ab.Pitches, parsePitch(c))
		case "runner":
			ab.Runners = append(ab.Runners, parseRunner(c))
		}
	}
	return ab
}

func parsePitch(el *fetch.Element) Pitch {
	a := attrsOf(el)
	p := Pitch{
		ID:             a.take("id"),
		Des:            a.take("des"),
		DesES:          a.take("des_es"),
		Type:           a.take("type"),
		TFS:            a.timeOfDay("tfs"),
		TFSZulu:        a.instant("tfs_zulu"),
		X:              a.take("x"),
		Y:              a.take("y"),
		EventNum:       a.take("event_num"),
		SvID:           a.take("sv_id"),
		PlayGUID:       a.take("play_guid"),
		StartSpeed:     a.take("start_speed"),
		EndSpeed:       a.take("end_speed"),
		SzTop:          a.take("sz_top"),
		SzBot:          a.take("sz_bot"),
		PfxX:           a.take("pfx_x"),
		PfxZ:           a.take("pfx_z"),
		PX:             a.take("px"),
		PZ:             a.take("pz"),
		X0:             a.take("x0"),
		Y0:             a.take("y0"),
		Z0:             a.take("z0"),
		VX0:            a.take("vx0"),
		VY0:            a.take("vy0"),
		VZ0:            a.take("vz0"),
		AX:             a.take("ax"),
		AY:             a.take("ay"),
		AZ:             a.take("az"),
		BreakY:         a.take("break_y"),
		BreakAngle:     a.take("break_angle"),
		BreakLength:    a.take("break_length"),
		PitchType:      a.take("pitch_type"),
		TypeConfidence: a.take("type_confidence"),
		Zone:           a.take("zone"),
		Nasty:          a.take("nasty"),
		SpinDir:        a.take("spin_dir"),
		SpinRate:       a.take("spin_rate"),
		CC:             a.take("cc"),
		MT:             a.take("mt"),
	}
	p.Extra = a.rest()
	return p
}

func parseRunner(el *fetch.Element) Runner {
	a := attrsOf(el)
	r := Runner{
		ID:       a.take("id"),
		Start:    a.take("start"),
		End:      a.take("end"),
		Event:    a.take("event"),
		EventNum: a.take("event_num"),
	}
	r.Extra = a.rest()
	return r
}

// AtBatCount sums at-bats over every inning.
func (g *Game) AtBatCount() int {
	n := 0
	for _, inn := range g.Innings {
		n += len(inn.AtBats)
	}
	return n
}
