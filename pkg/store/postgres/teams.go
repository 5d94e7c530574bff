package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/gameday/pkg/store"
)

// FindTeam returns the lowest-id team matching q. An empty query matches
// nothing.
func (s *Store) FindTeam(ctx context.Context, q store.TeamQuery) (*store.Team, error) {
	if q.Empty() {
		return nil, store.ErrNotFound
	}

	var (
		where []string
		args  []any
	)
	if q.GDID != "" {
		args = append(args, q.GDID)
		where = append(where, fmt.Sprintf("gdid = $%d", len(args)))
	}
	if q.Abbrev != "" {
		args = append(args, q.Abbrev)
		where = append(where, fmt.Sprintf("abbrev = $%d", len(args)))
	}

	query := `
		SELECT id, gdid, abbrev
		FROM gameday_teams
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id
		LIMIT 1`

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &store.Team{}
	err := s.reader().QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.GDID, &t.Abbrev)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return t, nil
}

// CreateTeam inserts t into the open batch and sets its id. A duplicate
// abbreviation is reported as store.ErrConflict.
func (s *Store) CreateTeam(ctx context.Context, t *store.Team) error {
	query := `
		INSERT INTO gameday_teams (gdid, abbrev)
		VALUES ($1, $2)
		RETURNING id
	`

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, query, t.GDID, t.Abbrev).Scan(&t.ID); err != nil {
			return fmt.Errorf("inserting team %s: %w", t.Abbrev, classify(err))
		}
		return nil
	})
}
