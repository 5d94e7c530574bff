package gameday

import (
	"fmt"
	"time"
)

const (
	DefaultGD2Base      = "http://gd2.mlb.com/components/game/mlb/"
	DefaultGDXBase      = "http://gdx.mlb.com/components/game/mlb/"
	DefaultStatsAPIBase = "http://statsapi.mlb.com/api/v1/"
	DefaultSavantBase   = "https://baseballsavant.mlb.com/"
)

// Endpoints holds the provider hosts. Every base ends with a slash.
type Endpoints struct {
	GD2      string
	GDX      string
	StatsAPI string
	Savant   string
}

// DefaultEndpoints are the public provider hosts.
var DefaultEndpoints = Endpoints{
	GD2:      DefaultGD2Base,
	GDX:      DefaultGDXBase,
	StatsAPI: DefaultStatsAPIBase,
	Savant:   DefaultSavantBase,
}

func datePath(year, month, day int) string {
	return fmt.Sprintf("year_%d/month_%02d/day_%02d/", year, month, day)
}

// DayURL is the directory listing for a calendar day.
func (e Endpoints) DayURL(date time.Time) string {
	return e.GD2 + datePath(date.Year(), int(date.Month()), date.Day())
}

// GameDirURL is the directory of one game.
func (e Endpoints) GameDirURL(id GameID) string {
	return e.GD2 + datePath(id.Year, id.Month, id.Day) + id.Dir()
}

func (e Endpoints) PlayersURL(id GameID) string {
	return e.GameDirURL(id) + "players.xml"
}

func (e Endpoints) GameXMLURL(id GameID) string {
	return e.GameDirURL(id) + "game.xml"
}

// InningAllURL is the full play-by-play document of a game.
func (e Endpoints) InningAllURL(id GameID) string {
	return e.GameDirURL(id) + "inning/inning_all.xml"
}

// LinescoreURL lives on the gdx host with zero-padded month and day.
func (e Endpoints) LinescoreURL(id GameID) string {
	return fmt.Sprintf("%syear_%04d/month_%02d/day_%02d/gid_%s/linescore.json",
		e.GDX, id.Year, id.Month, id.Day, id.String())
}

func (e Endpoints) ColorFeedURL(gamePK string) string {
	return fmt.Sprintf("%sgame/%s/feed/color.json", e.StatsAPI, gamePK)
}

func (e Endpoints) ExitVelocityURL(gamePK string) string {
	return fmt.Sprintf("%sgf?game_pk=%s", e.Savant, gamePK)
}
