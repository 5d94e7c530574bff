// Package stats selects season rows from the named stat lookups and projects
// them onto caller-chosen abbreviations.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/gameday/pkg/literal"
)

// Kind is the stat family of a lookup.
type Kind int

const (
	Hitting Kind = iota
	Pitching
)

func (k Kind) String() string {
	if k == Pitching {
		return "pitching"
	}
	return "hitting"
}

// ParseKind accepts "hitting" or "pitching" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "hitting", "batting":
		return Hitting, nil
	case "pitching":
		return Pitching, nil
	}
	return Hitting, fmt.Errorf("unknown stat kind %q", s)
}

// SeasonRow is one season of stats keyed by abbreviation.
type SeasonRow struct {
	Season int
	values map[string]literal.Value
	keys   []string
}

// NewSeasonRow builds a row from decoded JSON fields.
func NewSeasonRow(season int, fields map[string]any) SeasonRow {
	row := SeasonRow{Season: season, values: make(map[string]literal.Value, len(fields))}
	for k, v := range fields {
		row.values[strings.ToLower(k)] = literal.FromJSON(v)
		row.keys = append(row.keys, k)
	}
	sort.Strings(row.keys)
	return row
}

// Empty reports whether no row was selected.
func (r SeasonRow) Empty() bool {
	return len(r.values) == 0
}

// Get looks up an abbreviation case-insensitively.
func (r SeasonRow) Get(abbrev string) (literal.Value, bool) {
	v, ok := r.values[strings.ToLower(abbrev)]
	return v, ok
}

// Keys returns the abbreviations as they appeared in the payload, sorted.
func (r SeasonRow) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Stat is one projected value.
type Stat struct {
	Abbrev string        `json:"abbrev"`
	Value  literal.Value `json:"value"`
}

// Line is an ordered projection of a row.
type Line []Stat

// Get returns the value for an upper-cased abbreviation.
func (l Line) Get(abbrev string) (literal.Value, bool) {
	for _, s := range l {
		if strings.EqualFold(s.Abbrev, abbrev) {
			return s.Value, true
		}
	}
	return literal.Value{}, false
}

// Project keeps the requested abbreviations in the caller's order, with
// upper-cased keys. Names the row does not carry are omitted.
func Project(row SeasonRow, abbrevs []string) Line {
	line := Line{}
	for _, a := range abbrevs {
		if v, ok := row.Get(a); ok {
			line = append(line, Stat{Abbrev: strings.ToUpper(a), Value: v})
		}
	}
	return line
}

// ParsePayload selects the season row from a named stat lookup document,
// found under sport_<kind>_composed.sport_<kind>_agg.queryResults.row. A
// single row object is taken as is; a list is searched for the requested
// season. Anything else yields an empty row, which is the normal state for a
// player without stats that season.
func ParsePayload(doc any, kind Kind, season int) SeasonRow {
	root, ok := doc.(map[string]any)
	if !ok {
		return SeasonRow{Season: season}
	}
	composed, _ := root[fmt.Sprintf("sport_%s_composed", kind)].(map[string]any)
	agg, _ := composed[fmt.Sprintf("sport_%s_agg", kind)].(map[string]any)
	results, _ := agg["queryResults"].(map[string]any)

	switch row := results["row"].(type) {
	case map[string]any:
		if s, ok := seasonOf(row); ok {
			return NewSeasonRow(s, row)
		}
		return NewSeasonRow(season, row)
	case []any:
		for _, item := range row {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := seasonOf(m); ok && s == season {
				return NewSeasonRow(season, m)
			}
		}
	}
	return SeasonRow{Season: season}
}

func seasonOf(row map[string]any) (int, bool) {
	v := literal.FromJSON(row["season"])
	s, ok := v.Int()
	return int(s), ok
}
