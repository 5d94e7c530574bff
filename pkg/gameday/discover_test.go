package gameday_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/gameday"
)

var april5 = time.Date(2015, 4, 5, 0, 0, 0, 0, time.UTC)

func TestListGameIDs(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()

	ids, err := d.ListGameIDs(context.Background(), april5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"2015_04_05_lanmlb_sdnmlb_1",
		"2015_04_05_nyamlb_bosmlb_1",
		"2015_04_05_nyamlb_bosmlb_2",
		"2015_04_05_chamlb_detmlb_1", // matched on link text
	}
	if len(ids) != len(want) {
		t.Fatalf("Expected %d games, got %d: %v", len(want), len(ids), ids)
	}
	for i, id := range ids {
		if id.String() != want[i] {
			t.Errorf("game %d: expected %s, got %s", i, want[i], id)
		}
	}
	if ids[2].Number != 2 || ids[2].Away != "nya" || ids[2].Home != "bos" {
		t.Errorf("unexpected components %+v", ids[2])
	}
}

func TestListGameIDs_EmptyAndMissingDays(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()
	ctx := context.Background()

	tests := []struct {
		name string
		date time.Time
	}{
		{"listing without games", time.Date(2015, 4, 6, 0, 0, 0, 0, time.UTC)},
		{"listing not found", time.Date(2015, 12, 25, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := d.ListGameIDs(ctx, tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ids == nil || len(ids) != 0 {
				t.Errorf("Expected empty non-nil slice, got %#v", ids)
			}

			urls, err := d.ListPlayerRosterURLs(ctx, tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(urls) != 0 {
				t.Errorf("Expected no roster urls, got %v", urls)
			}
		})
	}
}

func TestListGames_TeamFilter(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()

	tests := []struct {
		team string
		want int
	}{
		{"", 4},
		{"nya", 2},
		{"NYA", 2},
		{"sdn", 1},
		{"la", 1},
		{"xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.team, func(t *testing.T) {
			ids, err := d.ListGames(context.Background(), april5, tt.team)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ids) != tt.want {
				t.Errorf("ListGames(%q) returned %d games, want %d", tt.team, len(ids), tt.want)
			}
			for _, id := range ids {
				if !id.Involves(tt.team) {
					t.Errorf("%s does not involve %q", id, tt.team)
				}
			}
		})
	}
}

func TestListPlayerRosterURLs(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()

	urls, err := d.ListPlayerRosterURLs(context.Background(), april5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := p.endpoints().GD2 + "year_2015/month_04/day_05/"
	want := []string{
		base + "gid_2015_04_05_lanmlb_sdnmlb_1/players.xml",
		base + "gid_2015_04_05_nyamlb_bosmlb_1/players.xml",
		base + "gid_2015_04_05_nyamlb_bosmlb_2/players.xml",
		base + "gid_2015_04_05_bad/players.xml",
	}
	if len(urls) != len(want) {
		t.Fatalf("Expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url %d: expected %s, got %s", i, want[i], urls[i])
		}
	}
}

func TestFetchRoster_SkipsBrokenRosters(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()

	players, err := d.FetchRoster(context.Background(), april5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// lanmlb_sdnmlb_1 has 3 players, nyamlb_bosmlb_1 has 1; game 2 is
	// malformed and gid_2015_04_05_bad is missing.
	if len(players) != 4 {
		t.Fatalf("Expected 4 players, got %d", len(players))
	}
	if players[0].Last != "Kershaw" || players[3].Last != "Rodriguez" {
		t.Errorf("unexpected order: %s ... %s", players[0].Last, players[3].Last)
	}
}

func TestZeroDateUsesToday(t *testing.T) {
	p := newProvider(t)
	now := time.Date(2015, 4, 5, 12, 0, 0, 0, time.UTC)
	d := p.discoverer(gameday.WithClock(func() time.Time { return now }))

	_, err := d.ListGameIDs(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local := now.Local()
	path := "/components/game/mlb/" + local.Format("year_2006/month_01/day_02/")
	if p.hits[path] != 1 {
		t.Errorf("Expected a request for %s, got hits %v", path, p.hits)
	}
}

func TestGameAttributes(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()

	attrs, err := d.GameAttributes(context.Background(), april5, "sdn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("Expected 1 game, got %d", len(attrs))
	}
	ga := attrs[0]
	if ga.Game.String() != "2015_04_05_lanmlb_sdnmlb_1" {
		t.Errorf("unexpected game %s", ga.Game)
	}
	if pk, ok := ga.GamePK.Int(); !ok || pk != 414036 {
		t.Errorf("Expected game_pk 414036, got %v", ga.GamePK)
	}
	if s, _ := ga.Type.Str(); s != "R" {
		t.Errorf("Expected type R, got %v", ga.Type)
	}
	if s, _ := ga.LocalGameTime.Str(); s != "13:10" {
		t.Errorf("Expected local time 13:10, got %v", ga.LocalGameTime)
	}
	if _, ok := ga.Extra["venue_w_chan_loc"]; !ok {
		t.Errorf("Expected venue_w_chan_loc in Extra, got %v", ga.Extra)
	}

	// games without a game.xml are skipped
	all, err := d.GameAttributes(context.Background(), april5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 game with attributes, got %d", len(all))
	}
}

func TestGameAttributes_ZeroDateIsPacific(t *testing.T) {
	p := newProvider(t)
	// 05:00 UTC on the 6th is still the evening of the 5th in San Diego.
	now := time.Date(2015, 4, 6, 5, 0, 0, 0, time.UTC)
	d := p.discoverer(gameday.WithClock(func() time.Time { return now }))

	attrs, err := d.GameAttributes(context.Background(), time.Time{}, "sdn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("Expected the April 5 game, got %d results", len(attrs))
	}
	if p.hits["/components/game/mlb/year_2015/month_04/day_05/"] != 1 {
		t.Errorf("Expected the April 5 listing to be requested, got %v", p.hits)
	}
}

func TestGameTree(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()
	id, _ := gameday.ParseGameID("gid_2015_04_05_lanmlb_sdnmlb_1/")

	game, err := d.GameTree(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(game.Innings) != 2 || game.AtBatCount() != 4 {
		t.Errorf("Expected 2 innings and 4 at-bats, got %d and %d", len(game.Innings), game.AtBatCount())
	}

	missing, _ := gameday.ParseGameID("gid_2015_04_05_nyamlb_bosmlb_1/")
	if _, err := d.GameTree(context.Background(), missing); !errors.Is(err, fetch.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing innings, got %v", err)
	}
}

func TestLinescore(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()
	id, _ := gameday.ParseGameID("gid_2015_04_05_lanmlb_sdnmlb_1/")

	ls, err := d.Linescore(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ls.Game != id || ls.GamePK != "414036" || ls.Status != "Final" {
		t.Errorf("unexpected linescore header %+v", ls)
	}
	if ls.State.Runs != (gameday.Split{Away: 6, Home: 3}) {
		t.Errorf("unexpected runs %+v", ls.State.Runs)
	}
	if len(ls.Innings) != 3 || ls.Innings[2].HomeRuns != 0 || ls.Innings[2].AwayRuns != 4 {
		t.Errorf("unexpected innings %+v", ls.Innings)
	}
}

func TestFeeds(t *testing.T) {
	p := newProvider(t)
	d := p.discoverer()
	ctx := context.Background()

	feed, err := d.ColorFeed(ctx, "414036")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed["game_id"] != "414036" {
		t.Errorf("unexpected color feed %v", feed)
	}

	evs, err := d.ExitVelocity(ctx, "414036")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(evs))
	}

	none, err := d.ExitVelocity(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no records for an empty feed, got %d", len(none))
	}
}
