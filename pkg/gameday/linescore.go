package gameday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Linescore is the gdx summary of a game: standings, state and per-inning runs.
type Linescore struct {
	Game         GameID
	GameType     string
	DoubleHeader bool
	Location     string
	WrapupLink   string
	PreviewLink  string
	StartET      time.Time
	StartUTC     time.Time
	Home         TeamStanding
	Away         TeamStanding
	Status       string
	State        GameState
	Innings      []InningRuns
	Tiebreaker   bool
	GamePK       string
	Venue        string
}

type TeamStanding struct {
	Abbrev    string
	Name      string
	Division  string
	Wins      int
	Losses    int
	GamesBack float64
}

// Split is an away/home pair.
type Split struct {
	Away int
	Home int
}

type GameState struct {
	Balls       int
	Strikes     int
	Outs        int
	Inning      int
	Runs        Split
	Hits        Split
	Errors      Split
	TopInning   bool
	Win         *PitcherLine
	Loss        *PitcherLine
	Save        *PitcherLine
	NoHitter    bool
	PerfectGame bool
}

// PitcherLine is the decision pitcher summary. ERA is nil when the feed
// reports "-".
type PitcherLine struct {
	ID      string
	First   string
	Last    string
	Display string
	ERA     *float64
	Wins    int
	Losses  int
	Saves   int
}

type InningRuns struct {
	Inning   int
	AwayRuns int
	HomeRuns int
}

var eastern = mustLoadLocation("America/New_York")

// ParseLinescore reads the data.game object of a linescore.json document.
func ParseLinescore(doc any) (*Linescore, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("linescore document is %T, not an object", doc)
	}
	data, ok := extractMap(root, "data")["game"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("linescore document has no data.game")
	}

	ls := &Linescore{
		GameType:     extractString(data, "game_type"),
		DoubleHeader: extractFlag(data, "double_header_sw"),
		Location:     extractString(data, "location"),
		WrapupLink:   extractString(data, "wrapup_link"),
		PreviewLink:  extractString(data, "home_preview_link"),
		Status:       extractString(data, "status"),
		Tiebreaker:   extractFlag(data, "tiebreaker_sw"),
		GamePK:       extractString(data, "game_pk"),
		Venue:        extractString(data, "venue"),
		Home:         parseStanding(data, "home"),
		Away:         parseStanding(data, "away"),
	}

	if start, err := parseEasternStart(extractString(data, "time_date"), extractString(data, "ampm")); err == nil {
		ls.StartET = start
		ls.StartUTC = start.UTC()
	}

	ls.State = GameState{
		Balls:       extractInt(data, "balls"),
		Strikes:     extractInt(data, "strikes"),
		Outs:        extractInt(data, "outs"),
		Inning:      extractInt(data, "inning"),
		Runs:        Split{Away: extractInt(data, "away_team_runs"), Home: extractInt(data, "home_team_runs")},
		Hits:        Split{Away: extractInt(data, "away_team_hits"), Home: extractInt(data, "home_team_hits")},
		Errors:      Split{Away: extractInt(data, "away_team_errors"), Home: extractInt(data, "home_team_errors")},
		TopInning:   extractFlag(data, "top_inning"),
		Win:         parsePitcherLine(data, "winning_pitcher"),
		Loss:        parsePitcherLine(data, "losing_pitcher"),
		Save:        parsePitcherLine(data, "save_pitcher"),
		NoHitter:    extractFlag(data, "is_no_hitter"),
		PerfectGame: extractFlag(data, "is_perfect_game"),
	}

	// A game with a single inning carries the linescore as a bare object.
	var innings []any
	switch v := data["linescore"].(type) {
	case []any:
		innings = v
	case map[string]any:
		innings = []any{v}
	}
	for _, raw := range innings {
		inn, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ls.Innings = append(ls.Innings, InningRuns{
			Inning:   extractInt(inn, "inning"),
			AwayRuns: extractInt(inn, "away_inning_runs"),
			HomeRuns: extractInt(inn, "home_inning_runs"),
		})
	}
	return ls, nil
}

func parseStanding(data map[string]any, side string) TeamStanding {
	return TeamStanding{
		Abbrev:    extractString(data, side+"_name_abbrev"),
		Name:      extractString(data, side+"_team_name"),
		Division:  extractString(data, side+"_division"),
		Wins:      extractInt(data, side+"_win"),
		Losses:    extractInt(data, side+"_loss"),
		GamesBack: extractFloat(data, side+"_games_back"),
	}
}

func parsePitcherLine(data map[string]any, key string) *PitcherLine {
	m, ok := data[key].(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	p := &PitcherLine{
		ID:      extractString(m, "id"),
		First:   extractString(m, "first_name"),
		Last:    extractString(m, "last_name"),
		Display: extractString(m, "name_display_roster"),
		Wins:    extractInt(m, "wins"),
		Losses:  extractInt(m, "losses"),
		Saves:   extractInt(m, "saves"),
	}
	if era, err := strconv.ParseFloat(extractString(m, "era"), 64); err == nil {
		p.ERA = &era
	}
	return p
}

// parseEasternStart parses "2015/04/05 7:05" plus "PM" as Eastern time.
func parseEasternStart(date, ampm string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("no start time")
	}
	return time.ParseInLocation("2006/01/02 3:04 PM", strings.TrimSpace(date+" "+ampm), eastern)
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("loading time zone %s: %v", name, err))
	}
	return loc
}

// Helper functions

func extractString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func extractMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func extractArray(m map[string]any, key string) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return []any{}
}

func extractInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	}
	return 0
}

// extractFloat treats "-" and blanks as zero.
func extractFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// extractFlag reads the provider's "Y"/"N" switches.
func extractFlag(m map[string]any, key string) bool {
	return strings.EqualFold(extractString(m, key), "Y")
}
