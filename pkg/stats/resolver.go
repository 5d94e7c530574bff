package stats

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/store"
)

// DefaultBaseURL is the named lookup host.
const DefaultBaseURL = "http://m.mlb.com/lookup/json/"

// URL builds the named lookup URL for one player season.
func URL(base string, kind Kind, playerID string, season int) string {
	return base + fmt.Sprintf(
		"named.sport_%s_composed.bam?player_id=%s&game_type=%%27R%%27&league_list_id=%%27mlb%%27&season=%d",
		kind, playerID, season)
}

// JSONFetcher is the part of fetch.Client the resolver needs.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string) (any, error)
}

// PlayerResolver maps a name onto a stored player.
type PlayerResolver interface {
	ResolveByName(ctx context.Context, first, last string) (*store.Player, error)
}

// Resolver fetches season stats by remote id or by player name.
type Resolver struct {
	client  JSONFetcher
	players PlayerResolver
	baseURL string
	logger  *log.Logger
}

type Option func(*Resolver)

func WithBaseURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.baseURL = u
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewResolver(client JSONFetcher, players PlayerResolver, opts ...Option) *Resolver {
	r := &Resolver{
		client:  client,
		players: players,
		baseURL: DefaultBaseURL,
		logger:  log.New(log.Writer(), "[stats] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetStats returns the season row for a remote player id. Absent remote data
// is an empty row; a malformed payload is an error.
func (r *Resolver) GetStats(ctx context.Context, kind Kind, playerID string, season int) (SeasonRow, error) {
	url := URL(r.baseURL, kind, playerID, season)
	doc, err := r.client.FetchJSON(ctx, url)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) && ctx.Err() == nil {
			r.logger.Printf("No %s stats for player %s in %d", kind, playerID, season)
			return SeasonRow{Season: season}, nil
		}
		return SeasonRow{Season: season}, fmt.Errorf("fetching %s stats for %s: %w", kind, playerID, err)
	}
	return ParsePayload(doc, kind, season), nil
}

// GetStatsByName resolves the player and projects both stat families onto
// abbrevs. An unknown player returns empty lines and the identity error.
func (r *Resolver) GetStatsByName(ctx context.Context, first, last string, season int, abbrevs []string) (hitting, pitching Line, err error) {
	p, err := r.players.ResolveByName(ctx, first, last)
	if err != nil {
		return Line{}, Line{}, err
	}

	hitRow, err := r.GetStats(ctx, Hitting, p.GDID, season)
	if err != nil {
		return Line{}, Line{}, err
	}
	pitchRow, err := r.GetStats(ctx, Pitching, p.GDID, season)
	if err != nil {
		return Line{}, Line{}, err
	}
	return Project(hitRow, abbrevs), Project(pitchRow, abbrevs), nil
}

// GetStatsForResolvedPlayer returns the pitching row for players listed at
// position P and the hitting row for everyone else.
func (r *Resolver) GetStatsForResolvedPlayer(ctx context.Context, first, last string, season int) (SeasonRow, error) {
	p, err := r.players.ResolveByName(ctx, first, last)
	if err != nil {
		return SeasonRow{Season: season}, err
	}
	kind := Hitting
	if p.IsPitcher() {
		kind = Pitching
	}
	return r.GetStats(ctx, kind, p.GDID, season)
}
