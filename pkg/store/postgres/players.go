package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fortuna/gameday/pkg/store"
)

var _ store.Store = (*Store)(nil)

const playerColumns = `id, gdid, first_name, last_name, number, box_name, throws, bats,
			position, status, team_id, date_modified`

// FindPlayer returns the lowest-id player matching q.
func (s *Store) FindPlayer(ctx context.Context, q store.PlayerQuery) (*store.Player, error) {
	var (
		where []string
		args  []any
	)
	if q.GDID != "" {
		args = append(args, q.GDID)
		where = append(where, fmt.Sprintf("gdid = $%d", len(args)))
	}
	if q.FirstName != "" {
		args = append(args, likePattern(q.FirstName))
		where = append(where, fmt.Sprintf("first_name ILIKE $%d", len(args)))
	}
	if q.LastName != "" {
		args = append(args, likePattern(q.LastName))
		where = append(where, fmt.Sprintf("last_name ILIKE $%d", len(args)))
	}

	query := `
		SELECT ` + playerColumns + `
		FROM gameday_players`
	if len(where) > 0 {
		query += `
		WHERE ` + strings.Join(where, " AND ")
	}
	query += `
		ORDER BY id
		LIMIT 1`

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &store.Player{}
	err := s.reader().QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.GDID, &p.FirstName, &p.LastName, &p.Number, &p.BoxName, &p.Throws, &p.Bats,
		&p.Position, &p.Status, &p.TeamID, &p.DateModified,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// CreatePlayer inserts p into the open batch and sets its id.
func (s *Store) CreatePlayer(ctx context.Context, p *store.Player) error {
	query := `
		INSERT INTO gameday_players (gdid, first_name, last_name, number, box_name, throws, bats,
			position, status, team_id, date_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			p.GDID, p.FirstName, p.LastName, p.Number, p.BoxName, p.Throws, p.Bats,
			p.Position, p.Status, p.TeamID, p.DateModified,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("inserting player %s: %w", p.GDID, classify(err))
		}
		return nil
	})
}

// UpdatePlayer overwrites every mutable column of the row with p.ID.
func (s *Store) UpdatePlayer(ctx context.Context, p *store.Player) error {
	query := `
		UPDATE gameday_players
		SET gdid = $2, first_name = $3, last_name = $4, number = $5, box_name = $6,
			throws = $7, bats = $8, position = $9, status = $10, team_id = $11,
			date_modified = $12
		WHERE id = $1
	`

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			p.ID, p.GDID, p.FirstName, p.LastName, p.Number, p.BoxName,
			p.Throws, p.Bats, p.Position, p.Status, p.TeamID, p.DateModified,
		)
		if err != nil {
			return fmt.Errorf("updating player %d: %w", p.ID, classify(err))
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("updating player %d: %w", p.ID, store.ErrNotFound)
		}
		return nil
	})
}

// likePattern escapes LIKE wildcards and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// classify maps constraint violations onto store.ErrConflict.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pqErr.Message, store.ErrConflict)
	}
	return err
}
