package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errClosed = errors.New("identity store is closed")

// MemoryStore keeps the identity cache in process, in insertion order.
// Returned records are copies; callers persist changes with UpdatePlayer.
type MemoryStore struct {
	mu      sync.Mutex
	players []*Player
	teams   []*Team
	nextID  int64
	flushes int
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) FindPlayer(ctx context.Context, q PlayerQuery) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}

	for _, p := range m.players {
		if q.Matches(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreatePlayer(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	for _, existing := range m.players {
		if existing.GDID == p.GDID {
			return fmt.Errorf("player gdid %q: %w", p.GDID, ErrConflict)
		}
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.players = append(m.players, &cp)
	return nil
}

func (m *MemoryStore) UpdatePlayer(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	for i, existing := range m.players {
		if existing.ID == p.ID {
			cp := *p
			m.players[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("updating player %d: %w", p.ID, ErrNotFound)
}

func (m *MemoryStore) FindTeam(ctx context.Context, q TeamQuery) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}

	for _, t := range m.teams {
		if q.Matches(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateTeam(ctx context.Context, t *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	for _, existing := range m.teams {
		if existing.Abbrev == t.Abbrev {
			return fmt.Errorf("team abbreviation %q: %w", t.Abbrev, ErrConflict)
		}
	}
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.teams = append(m.teams, &cp)
	return nil
}

// Flush is a no-op apart from counting calls.
func (m *MemoryStore) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.flushes++
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Flushes returns how many times Flush succeeded.
func (m *MemoryStore) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Players returns copies of every stored player in insertion order.
func (m *MemoryStore) Players() []Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	return out
}

// Teams returns copies of every stored team in insertion order.
func (m *MemoryStore) Teams() []Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, *t)
	}
	return out
}
