package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fortuna/gameday/internal/config"
	"github.com/fortuna/gameday/pkg/cache"
	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/gameday"
	"github.com/fortuna/gameday/pkg/identity"
	"github.com/fortuna/gameday/pkg/publisher"
	"github.com/fortuna/gameday/pkg/stats"
	"github.com/fortuna/gameday/pkg/store"
	"github.com/fortuna/gameday/pkg/store/postgres"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg        *config.Config
	client     *fetch.Client
	discoverer *gameday.Discoverer
	store      store.Store
	reconciler *identity.Reconciler
	resolver   *stats.Resolver
	redis      *cache.RedisCache
	backends   []backend
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// backend is a remote dependency opened by openStore.
type backend struct {
	name  string
	check healthChecker
}

// newApp builds the fetch side only. Commands that touch identities call
// openStore as well.
func newApp(cfg *config.Config) *app {
	client := fetch.NewClient(
		fetch.WithTransport(fetch.NewHTTPTransport(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)),
		fetch.WithDelay(cfg.Fetch.Delay),
	)
	return &app{
		cfg:        cfg,
		client:     client,
		discoverer: gameday.NewDiscoverer(client, gameday.WithEndpoints(cfg.Provider.Endpoints)),
	}
}

// openStore selects PostgreSQL when DATABASE_URL is set and the in-memory
// store otherwise, then layers the Redis cache and publisher on top.
func (a *app) openStore(ctx context.Context) error {
	var inner store.Store
	if a.cfg.Store.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, a.cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		inner = pg
		a.backends = append(a.backends, backend{name: "postgres", check: pg})
	} else {
		log.Println("DATABASE_URL not set; identities are kept in memory for this run")
		inner = store.NewMemoryStore()
	}
	a.store = inner

	var opts []identity.Option
	if a.cfg.Store.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, a.cfg.Store.RedisURL)
		if err != nil {
			inner.Close()
			return fmt.Errorf("connect redis: %w", err)
		}
		a.redis = rc
		a.backends = append(a.backends, backend{name: "redis", check: rc})
		a.store = cache.NewCachedStore(inner, rc, a.cfg.Store.CacheTTL)
		if a.cfg.PublishRosterChanges {
			opts = append(opts, identity.WithNotifier(publisher.NewRedisStreamPublisher(rc.Client())))
		}
	}

	a.reconciler = identity.NewReconciler(a.store, a.discoverer, opts...)
	a.resolver = stats.NewResolver(a.client, a.reconciler, stats.WithBaseURL(a.cfg.Provider.StatsURL))
	return nil
}

// checkHealth pings every opened backend and writes one status line each.
// The in-memory store has nothing to ping.
func (a *app) checkHealth(ctx context.Context, w io.Writer) error {
	if len(a.backends) == 0 {
		fmt.Fprintln(w, "memory: ok")
		return nil
	}

	var failed []string
	for _, b := range a.backends {
		if err := b.check.HealthCheck(ctx); err != nil {
			fmt.Fprintf(w, "%s: %v\n", b.name, err)
			failed = append(failed, b.name)
			continue
		}
		fmt.Fprintf(w, "%s: ok\n", b.name)
	}
	if len(failed) > 0 {
		return fmt.Errorf("unhealthy backends: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (a *app) Close() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// parseDate accepts YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// parseGameArg accepts a game id with or without the gid_ prefix and
// trailing slash, e.g. 2015_04_05_lanmlb_sdnmlb_1.
func parseGameArg(s string) (gameday.GameID, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "gid_"), "/")
	id, ok := gameday.ParseGameID("gid_" + s + "/")
	if !ok {
		return gameday.GameID{}, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
