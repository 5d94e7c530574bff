// Package reference reads the static league, division and team hierarchy.
package reference

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// ErrReferenceDataNotFound is matched by every *NotFoundError.
var ErrReferenceDataNotFound = errors.New("reference data not found")

// NotFoundError names the lookup that failed.
type NotFoundError struct {
	Kind string // league, division or team
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrReferenceDataNotFound }

type Team struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Abbrev string `yaml:"abbrev" json:"abbrev"`
	Code   string `yaml:"code" json:"code"` // gameday directory code, e.g. "nya"
}

type Division struct {
	ID    int    `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Teams []Team `yaml:"teams" json:"teams"`
}

type League struct {
	ID        int        `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Abbrev    string     `yaml:"abbrev" json:"abbrev"`
	Divisions []Division `yaml:"divisions" json:"divisions"`
}

// Data is one parsed reference file.
type Data struct {
	Leagues []League `yaml:"leagues" json:"leagues"`
}

// Load reads and parses path. Nothing is cached between calls.
func Load(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}
	d, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.UnmarshalStrict(b, &d); err != nil {
		return nil, err
	}
	if len(d.Leagues) == 0 {
		return nil, errors.New("no leagues defined")
	}
	return &d, nil
}

// League matches a league by name or abbreviation, ignoring case.
func (d *Data) League(name string) (*League, error) {
	for i := range d.Leagues {
		l := &d.Leagues[i]
		if strings.EqualFold(l.Name, name) || strings.EqualFold(l.Abbrev, name) {
			return l, nil
		}
	}
	return nil, &NotFoundError{Kind: "league", Name: name}
}

// Division looks up a division inside a league.
func (d *Data) Division(league, division string) (*Division, error) {
	l, err := d.League(league)
	if err != nil {
		return nil, err
	}
	for i := range l.Divisions {
		if strings.EqualFold(l.Divisions[i].Name, division) {
			return &l.Divisions[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "division", Name: l.Abbrev + " " + division}
}

// Team matches a team by full name, abbreviation or gameday code.
func (d *Data) Team(nameOrAbbrev string) (*Team, error) {
	for _, l := range d.Leagues {
		for _, div := range l.Divisions {
			for i := range div.Teams {
				t := &div.Teams[i]
				if strings.EqualFold(t.Name, nameOrAbbrev) ||
					strings.EqualFold(t.Abbrev, nameOrAbbrev) ||
					strings.EqualFold(t.Code, nameOrAbbrev) {
					return t, nil
				}
			}
		}
	}
	return nil, &NotFoundError{Kind: "team", Name: nameOrAbbrev}
}

// Teams returns every team in file order.
func (d *Data) Teams() []Team {
	var out []Team
	for _, l := range d.Leagues {
		for _, div := range l.Divisions {
			out = append(out, div.Teams...)
		}
	}
	return out
}
