package gameday

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/gameday/pkg/fetch"
)

// Fetcher is the part of fetch.Client the discoverer needs.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (*goquery.Document, error)
	FetchXML(ctx context.Context, url string) (*fetch.Element, error)
	FetchJSON(ctx context.Context, url string) (any, error)
}

// Discoverer walks the dated directory tree and fetches per-game documents.
type Discoverer struct {
	client    Fetcher
	endpoints Endpoints
	logger    *log.Logger
	now       func() time.Time
	pacific   *time.Location
}

type Option func(*Discoverer)

func WithEndpoints(e Endpoints) Option {
	return func(d *Discoverer) { d.endpoints = e }
}

func WithLogger(l *log.Logger) Option {
	return func(d *Discoverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock replaces time.Now when resolving a zero date.
func WithClock(now func() time.Time) Option {
	return func(d *Discoverer) { d.now = now }
}

// NewDiscoverer creates a discoverer against the default provider hosts.
func NewDiscoverer(client Fetcher, opts ...Option) *Discoverer {
	d := &Discoverer{
		client:    client,
		endpoints: DefaultEndpoints,
		logger:    log.New(log.Writer(), "[gameday] ", log.LstdFlags),
		now:       time.Now,
		pacific:   mustLoadLocation("America/Los_Angeles"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Endpoints returns the hosts the discoverer talks to.
func (d *Discoverer) Endpoints() Endpoints {
	return d.endpoints
}

// today resolves a zero date to the current local day.
func (d *Discoverer) today(date time.Time) time.Time {
	if date.IsZero() {
		return d.now().Local()
	}
	return date
}

// ListGameIDs returns every game directory listed for the date. A missing
// listing is an empty day, not an error.
func (d *Discoverer) ListGameIDs(ctx context.Context, date time.Time) ([]GameID, error) {
	return d.listGames(ctx, d.today(date), "")
}

// ListGames is ListGameIDs filtered by a case-insensitive team code substring.
func (d *Discoverer) ListGames(ctx context.Context, date time.Time, team string) ([]GameID, error) {
	return d.listGames(ctx, d.today(date), team)
}

func (d *Discoverer) listGames(ctx context.Context, date time.Time, team string) ([]GameID, error) {
	doc, err := d.listing(ctx, date)
	if err != nil || doc == nil {
		return []GameID{}, err
	}

	ids := []GameID{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		id, ok := ParseGameID(href)
		if !ok {
			id, ok = ParseGameID(strings.TrimSpace(a.Text()))
		}
		if !ok || !id.Involves(team) {
			return
		}
		ids = append(ids, id)
	})
	return ids, nil
}

// ListPlayerRosterURLs returns the players.xml URL of every gid_ entry.
func (d *Discoverer) ListPlayerRosterURLs(ctx context.Context, date time.Time) ([]string, error) {
	date = d.today(date)
	doc, err := d.listing(ctx, date)
	if err != nil || doc == nil {
		return []string{}, err
	}

	dayURL := d.endpoints.DayURL(date)
	urls := []string{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "gid_") {
			urls = append(urls, dayURL+href+"players.xml")
		}
	})
	return urls, nil
}

// FetchRoster collects the player rows of every roster listed for the date.
// A roster that cannot be fetched or decoded is logged and skipped.
func (d *Discoverer) FetchRoster(ctx context.Context, date time.Time) ([]PlayerAttributes, error) {
	urls, err := d.ListPlayerRosterURLs(ctx, date)
	if err != nil {
		return nil, err
	}

	players := []PlayerAttributes{}
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return players, err
		}
		root, err := d.client.FetchXML(ctx, url)
		if err != nil {
			d.logger.Printf("Skipping roster %s: %v", url, err)
			continue
		}
		players = append(players, ParsePlayers(root)...)
	}
	d.logger.Printf("Collected %d roster rows from %d rosters", len(players), len(urls))
	return players, nil
}

// GameAttributes returns the game.xml root attributes for each game of the
// date involving team. A zero date means today on the US West Coast, where
// the provider rolls its day over.
func (d *Discoverer) GameAttributes(ctx context.Context, date time.Time, team string) ([]GameAttributes, error) {
	if date.IsZero() {
		date = d.now().In(d.pacific)
	}
	ids, err := d.listGames(ctx, date, team)
	if err != nil {
		return nil, err
	}

	out := []GameAttributes{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		root, err := d.client.FetchXML(ctx, d.endpoints.GameXMLURL(id))
		if err != nil {
			d.logger.Printf("Skipping game.xml for %s: %v", id, err)
			continue
		}
		attrs := ParseGameAttributes(root)
		attrs.Game = id
		out = append(out, attrs)
	}
	return out, nil
}

// GameTree fetches and parses inning/inning_all.xml.
func (d *Discoverer) GameTree(ctx context.Context, id GameID) (*Game, error) {
	root, err := d.client.FetchXML(ctx, d.endpoints.InningAllURL(id))
	if err != nil {
		return nil, fmt.Errorf("fetching innings for %s: %w", id, err)
	}
	game, err := ParseGameTree(root)
	if err != nil {
		return nil, fmt.Errorf("parsing innings for %s: %w", id, err)
	}
	return game, nil
}

// Linescore fetches the gdx linescore summary.
func (d *Discoverer) Linescore(ctx context.Context, id GameID) (*Linescore, error) {
	doc, err := d.client.FetchJSON(ctx, d.endpoints.LinescoreURL(id))
	if err != nil {
		return nil, fmt.Errorf("fetching linescore for %s: %w", id, err)
	}
	ls, err := ParseLinescore(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing linescore for %s: %w", id, err)
	}
	ls.Game = id
	return ls, nil
}

// ColorFeed returns the decoded color commentary feed of a game.
func (d *Discoverer) ColorFeed(ctx context.Context, gamePK string) (map[string]any, error) {
	doc, err := d.client.FetchJSON(ctx, d.endpoints.ColorFeedURL(gamePK))
	if err != nil {
		return nil, fmt.Errorf("fetching color feed for %s: %w", gamePK, err)
	}
	feed, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("color feed for %s is %T, not an object", gamePK, doc)
	}
	return feed, nil
}

// ExitVelocity fetches the tracked pitches of a game.
func (d *Discoverer) ExitVelocity(ctx context.Context, gamePK string) ([]ExitVelocity, error) {
	doc, err := d.client.FetchJSON(ctx, d.endpoints.ExitVelocityURL(gamePK))
	if err != nil {
		return nil, fmt.Errorf("fetching exit velocity for %s: %w", gamePK, err)
	}
	return ParseExitVelocity(doc)
}

// listing fetches the day directory. Absence yields a nil document and no error.
func (d *Discoverer) listing(ctx context.Context, date time.Time) (*goquery.Document, error) {
	url := d.endpoints.DayURL(date)
	doc, err := d.client.FetchHTML(ctx, url)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) && ctx.Err() == nil {
			d.logger.Printf("No listing at %s", url)
			return nil, nil
		}
		return nil, fmt.Errorf("fetching listing %s: %w", url, err)
	}
	return doc, nil
}
