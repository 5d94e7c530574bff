// Package gameday discovers games and rosters in the Gameday directory tree
// and parses the records found there into typed values.
package gameday

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// gameDirPattern matches a game directory entry such as
// "gid_2015_04_05_lanmlb_sdnmlb_1/".
var gameDirPattern = regexp.MustCompile(`^gid_(\d+)_(\d+)_(\d+)_(\w+?)mlb_(\w+?)mlb_(\d)/$`)

// GameID is the composite key of one game directory.
type GameID struct {
	Year   int
	Month  int
	Day    int
	Away   string
	Home   string
	Number int
}

// ParseGameID parses a directory entry. The trailing slash is required.
func ParseGameID(entry string) (GameID, bool) {
	m := gameDirPattern.FindStringSubmatch(entry)
	if m == nil {
		return GameID{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	num, _ := strconv.Atoi(m[6])
	return GameID{
		Year:   year,
		Month:  month,
		Day:    day,
		Away:   m[4],
		Home:   m[5],
		Number: num,
	}, true
}

// String renders the id without prefix or slash: 2015_04_05_lanmlb_sdnmlb_1.
func (g GameID) String() string {
	return fmt.Sprintf("%04d_%02d_%02d_%smlb_%smlb_%d", g.Year, g.Month, g.Day, g.Away, g.Home, g.Number)
}

// Dir is the directory entry name, "gid_" + String() + "/".
func (g GameID) Dir() string {
	return "gid_" + g.String() + "/"
}

// Involves reports whether team is a case-insensitive substring of either
// team code. An empty team matches every game.
func (g GameID) Involves(team string) bool {
	if team == "" {
		return true
	}
	team = strings.ToLower(team)
	return strings.Contains(strings.ToLower(g.Away), team) ||
		strings.Contains(strings.ToLower(g.Home), team)
}
