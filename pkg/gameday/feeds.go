package gameday

import (
	"fmt"

	"github.com/fortuna/gameday/pkg/literal"
)

// ExitVelocity is one tracked pitch from the exit velocity feed.
type ExitVelocity struct {
	Inning                       literal.Value
	ABNumber                     literal.Value
	Outs                         literal.Value
	Batter                       literal.Value
	Stand                        literal.Value
	BatterName                   literal.Value
	Pitcher                      literal.Value
	PThrows                      literal.Value
	PitcherName                  literal.Value
	TeamBatting                  literal.Value
	TeamFielding                 literal.Value
	Result                       literal.Value
	Des                          literal.Value
	Events                       literal.Value
	SvID                         literal.Value
	Strikes                      literal.Value
	Balls                        literal.Value
	PreStrikes                   literal.Value
	PreBalls                     literal.Value
	Call                         literal.Value
	CallName                     literal.Value
	PitchType                    literal.Value
	PitchName                    literal.Value
	Description                  literal.Value
	BallsAndStrikes              literal.Value
	StartSpeed                   literal.Value
	EndSpeed                     literal.Value
	SzTop                        literal.Value
	SzBot                        literal.Value
	PX                           literal.Value
	PZ                           literal.Value
	X0                           literal.Value
	Z0                           literal.Value
	HitSpeed                     literal.Value
	HitDistance                  literal.Value
	HitAngle                     literal.Value
	IsBIPOut                     literal.Value
	PitchNumber                  literal.Value
	HcX                          literal.Value
	HcY                          literal.Value
	PlayerTotalPitches           literal.Value
	PlayerTotalPitchesPitchTypes literal.Value
	GameTotalPitches             literal.Value
	RowID                        literal.Value
	GamePK                       literal.Value
	PlayID                       literal.Value
	XBA                          literal.Value
	ResultTable                  literal.Value
	Extra                        map[string]literal.Value
}

// fields is the JSON counterpart of attrs.
type fields map[string]any

func (f fields) take(name string) literal.Value {
	v, ok := f[name]
	if !ok {
		return literal.Value{}
	}
	delete(f, name)
	return literal.FromJSON(v)
}

func (f fields) rest() map[string]literal.Value {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]literal.Value, len(f))
	for k, v := range f {
		out[k] = literal.FromJSON(v)
	}
	return out
}

// ParseExitVelocity reads the records under "exit_velocity". A document
// without that key has no tracked pitches.
func ParseExitVelocity(doc any) ([]ExitVelocity, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("exit velocity document is %T, not an object", doc)
	}

	var out []ExitVelocity
	for _, raw := range extractArray(root, "exit_velocity") {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		f := make(fields, len(rec))
		for k, v := range rec {
			f[k] = v
		}
		out = append(out, parseExitVelocity(f))
	}
	return out, nil
}

func parseExitVelocity(f fields) ExitVelocity {
	ev := ExitVelocity{
		Inning:                       f.take("inning"),
		ABNumber:                     f.take("ab_number"),
		Outs:                         f.take("outs"),
		Batter:                       f.take("batter"),
		Stand:                        f.take("stand"),
		BatterName:                   f.take("batter_name"),
		Pitcher:                      f.take("pitcher"),
		PThrows:                      f.take("p_throws"),
		PitcherName:                  f.take("pitcher_name"),
		TeamBatting:                  f.take("team_batting"),
		TeamFielding:                 f.take("team_fielding"),
		Result:                       f.take("result"),
		Des:                          f.take("des"),
		Events:                       f.take("events"),
		SvID:                         f.take("sv_id"),
		Strikes:                      f.take("strikes"),
		Balls:                        f.take("balls"),
		PreStrikes:                   f.take("pre_strikes"),
		PreBalls:                     f.take("pre_balls"),
		Call:                         f.take("call"),
		CallName:                     f.take("call_name"),
		PitchType:                    f.take("pitch_type"),
		PitchName:                    f.take("pitch_name"),
		Description:                  f.take("description"),
		BallsAndStrikes:              f.take("balls_and_strikes"),
		StartSpeed:                   f.take("start_speed"),
		EndSpeed:                     f.take("end_speed"),
		SzTop:                        f.take("sz_top"),
		SzBot:                        f.take("sz_bot"),
		PX:                           f.take("px"),
		PZ:                           f.take("pz"),
		X0:                           f.take("x0"),
		Z0:                           f.take("z0"),
		HitSpeed:                     f.take("hit_speed"),
		HitDistance:                  f.take("hit_distance"),
		HitAngle:                     f.take("hit_angle"),
		IsBIPOut:                     f.take("is_bip_out"),
		PitchNumber:                  f.take("pitch_number"),
		HcX:                          f.take("hc_x"),
		HcY:                          f.take("hc_y"),
		PlayerTotalPitches:           f.take("player_total_pitches"),
		PlayerTotalPitchesPitchTypes: f.take("player_total_pitches_pitch_types"),
		GameTotalPitches:             f.take("game_total_pitches"),
		RowID:                        f.take("rowId"),
		GamePK:                       f.take("game_pk"),
		PlayID:                       f.take("play_id"),
		XBA:                          f.take("xba"),
		ResultTable:                  f.take("result_table"),
	}
	ev.Extra = f.rest()
	return ev
}
