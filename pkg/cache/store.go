package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/gameday/pkg/store"
)

const (
	playerKeyPrefix = "gameday:player:"
	teamKeyPrefix   = "gameday:team:"

	// DefaultTTL bounds how long a cached identity is trusted.
	DefaultTTL = 24 * time.Hour
)

// CachedStore caches lookups by remote id. Name searches always go to the
// wrapped store. Writes go through to the wrapped store and then to Redis;
// if a flush fails the keys written since the last flush are evicted.
type CachedStore struct {
	inner  store.Store
	cache  *RedisCache
	ttl    time.Duration
	logger *log.Logger

	mu      sync.Mutex
	pending []string
}

var _ store.Store = (*CachedStore)(nil)

// NewCachedStore wraps inner. A zero ttl uses DefaultTTL.
func NewCachedStore(inner store.Store, cache *RedisCache, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedStore{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.New(log.Writer(), "[cache] ", log.LstdFlags),
	}
}

// SetLogger replaces the cache logger.
func (c *CachedStore) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

func (c *CachedStore) FindPlayer(ctx context.Context, q store.PlayerQuery) (*store.Player, error) {
	if q.GDID == "" || q.FirstName != "" || q.LastName != "" {
		return c.inner.FindPlayer(ctx, q)
	}

	key := playerKeyPrefix + q.GDID
	p := &store.Player{}
	if c.load(ctx, key, p) {
		return p, nil
	}

	p, err := c.inner.FindPlayer(ctx, q)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, p)
	return p, nil
}

func (c *CachedStore) CreatePlayer(ctx context.Context, p *store.Player) error {
	if err := c.inner.CreatePlayer(ctx, p); err != nil {
		return err
	}
	c.track(c.save(ctx, playerKeyPrefix+p.GDID, p))
	return nil
}

func (c *CachedStore) UpdatePlayer(ctx context.Context, p *store.Player) error {
	if err := c.inner.UpdatePlayer(ctx, p); err != nil {
		return err
	}
	c.track(c.save(ctx, playerKeyPrefix+p.GDID, p))
	return nil
}

func (c *CachedStore) FindTeam(ctx context.Context, q store.TeamQuery) (*store.Team, error) {
	if q.GDID == "" || q.Abbrev != "" {
		return c.inner.FindTeam(ctx, q)
	}

	key := teamKeyPrefix + q.GDID
	t := &store.Team{}
	if c.load(ctx, key, t) {
		return t, nil
	}

	t, err := c.inner.FindTeam(ctx, q)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, t)
	return t, nil
}

func (c *CachedStore) CreateTeam(ctx context.Context, t *store.Team) error {
	if err := c.inner.CreateTeam(ctx, t); err != nil {
		return err
	}
	c.track(c.save(ctx, teamKeyPrefix+t.GDID, t))
	return nil
}

func (c *CachedStore) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if err := c.inner.Flush(ctx); err != nil {
		if delErr := c.cache.Delete(ctx, pending...); delErr != nil {
			c.logger.Printf("Evicting %d unflushed keys: %v", len(pending), delErr)
		}
		return err
	}
	return nil
}

// Close closes the wrapped store. The Redis client is owned by the caller.
func (c *CachedStore) Close() error {
	return c.inner.Close()
}

// load reports a cache hit. Redis failures are logged and treated as misses.
func (c *CachedStore) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.cache.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Printf("Reading %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.logger.Printf("Decoding %s: %v", key, err)
		return false
	}
	return true
}

// save writes v under key and returns the key when it was stored.
func (c *CachedStore) save(ctx context.Context, key string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Printf("Encoding %s: %v", key, err)
		return ""
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Printf("Writing %s: %v", key, err)
		return ""
	}
	return key
}

func (c *CachedStore) track(key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	c.pending = append(c.pending, key)
	c.mu.Unlock()
}
