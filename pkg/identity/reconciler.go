// Package identity keeps the local player and team identity cache in step
// with the rosters published by the provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/gameday/pkg/gameday"
	"github.com/fortuna/gameday/pkg/store"
)

// ErrIdentityNotFound is returned when a player is still unknown after one
// roster refresh.
var ErrIdentityNotFound = errors.New("player identity not found")

// RosterSource yields the roster rows for a date; a zero date means today.
type RosterSource interface {
	FetchRoster(ctx context.Context, date time.Time) ([]gameday.PlayerAttributes, error)
}

// ChangeKind says whether a roster row created or updated a player.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
)

// RosterChange describes one write made by a reconciliation.
type RosterChange struct {
	Kind       ChangeKind   `json:"kind"`
	Player     store.Player `json:"player"`
	TeamAbbrev string       `json:"team_abbrev"`
	Changed    []string     `json:"changed,omitempty"`
	At         time.Time    `json:"at"`
}

// ChangeNotifier is told about every identity write.
type ChangeNotifier interface {
	NotifyRosterChange(ctx context.Context, change RosterChange) error
}

// Reconciler applies roster rows to the identity store and resolves players,
// refreshing from today's rosters at most once per lookup.
type Reconciler struct {
	store    store.Store
	source   RosterSource
	notifier ChangeNotifier
	logger   *log.Logger
	now      func() time.Time
	locks    keyedMutex
}

type Option func(*Reconciler)

func WithNotifier(n ChangeNotifier) Option {
	return func(r *Reconciler) { r.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(s store.Store, source RosterSource, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  s,
		source: source,
		logger: log.New(log.Writer(), "[identity] ", log.LstdFlags),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReconcileRoster creates unseen players and updates drifted ones, then
// flushes the store once. Rows that fail are logged and skipped. The
// returned slice holds every player the batch created, updated or confirmed.
//
// If ctx is cancelled mid-batch the rows already reconciled are still
// flushed, and the context error is returned alongside the partial slice.
func (r *Reconciler) ReconcileRoster(ctx context.Context, records []gameday.PlayerAttributes) ([]*store.Player, error) {
	players := make([]*store.Player, 0, len(records))
	var created, updated int

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			r.logger.Printf("Roster batch cancelled after %d of %d rows, flushing partial batch", i, len(records))
			if ferr := r.store.Flush(context.WithoutCancel(ctx)); ferr != nil {
				return players, errors.Join(err, fmt.Errorf("flushing identity store: %w", ferr))
			}
			return players, err
		}
		p, kind, err := r.reconcileOne(ctx, rec)
		if err != nil {
			r.logger.Printf("Skipping roster row for player %q (%s %s): %v", rec.ID, rec.First, rec.Last, err)
			continue
		}
		switch kind {
		case ChangeCreated:
			created++
		case ChangeUpdated:
			updated++
		}
		players = append(players, p)
	}

	if err := r.store.Flush(ctx); err != nil {
		return players, fmt.Errorf("flushing identity store: %w", err)
	}
	r.logger.Printf("Reconciled %d roster rows: %d created, %d updated", len(records), created, updated)
	return players, nil
}

// reconcileOne runs the read-compare-write for a single row under the
// row's remote id lock. The returned kind is empty when nothing changed.
func (r *Reconciler) reconcileOne(ctx context.Context, rec gameday.PlayerAttributes) (*store.Player, ChangeKind, error) {
	if rec.ID == "" {
		return nil, "", errors.New("roster row has no player id")
	}
	if rec.TeamID == "" {
		return nil, "", fmt.Errorf("roster row for player %s has no team id", rec.ID)
	}

	unlock := r.locks.Lock("player:" + rec.ID)
	defer unlock()

	team, err := r.ensureTeam(ctx, rec.TeamID, rec.TeamAbbrev)
	if err != nil {
		return nil, "", err
	}

	existing, err := r.store.FindPlayer(ctx, store.PlayerQuery{GDID: rec.ID})
	if errors.Is(err, store.ErrNotFound) {
		p := &store.Player{
			GDID:         rec.ID,
			FirstName:    rec.First,
			LastName:     rec.Last,
			Number:       rec.Num,
			BoxName:      rec.BoxName,
			Throws:       rec.Throws,
			Bats:         rec.Bats,
			Position:     rec.Position,
			Status:       rec.Status,
			TeamID:       team.ID,
			DateModified: r.now(),
		}
		if err := r.store.CreatePlayer(ctx, p); err != nil {
			return nil, "", fmt.Errorf("creating player: %w", err)
		}
		r.notify(ctx, RosterChange{Kind: ChangeCreated, Player: *p, TeamAbbrev: team.Abbrev, At: p.DateModified})
		return p, ChangeCreated, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("finding player: %w", err)
	}

	changed := drift(existing, rec, team.ID)
	if len(changed) == 0 {
		return existing, "", nil
	}

	existing.GDID = rec.ID
	existing.Number = rec.Num
	existing.Position = rec.Position
	existing.Status = rec.Status
	existing.TeamID = team.ID
	existing.DateModified = r.now()
	if err := r.store.UpdatePlayer(ctx, existing); err != nil {
		return nil, "", fmt.Errorf("updating player: %w", err)
	}
	r.notify(ctx, RosterChange{Kind: ChangeUpdated, Player: *existing, TeamAbbrev: team.Abbrev, Changed: changed, At: existing.DateModified})
	return existing, ChangeUpdated, nil
}

// drift lists the tracked fields that differ from the stored record.
func drift(p *store.Player, rec gameday.PlayerAttributes, teamID int64) []string {
	var changed []string
	if p.Number != rec.Num {
		changed = append(changed, "number")
	}
	if p.Position != rec.Position {
		changed = append(changed, "position")
	}
	if p.Status != rec.Status {
		changed = append(changed, "status")
	}
	if p.TeamID != teamID {
		changed = append(changed, "team")
	}
	if p.GDID != rec.ID {
		changed = append(changed, "gdid")
	}
	return changed
}

// ensureTeam finds the team by remote id, creating it with the observed
// abbreviation on first sighting.
func (r *Reconciler) ensureTeam(ctx context.Context, gdid, abbrev string) (*store.Team, error) {
	unlock := r.locks.Lock("team:" + gdid)
	defer unlock()

	team, err := r.store.FindTeam(ctx, store.TeamQuery{GDID: gdid})
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("finding team %s: %w", gdid, err)
	}

	team = &store.Team{GDID: gdid, Abbrev: abbrev}
	if err := r.store.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("creating team %s (%s): %w", gdid, abbrev, err)
	}
	return team, nil
}

func (r *Reconciler) notify(ctx context.Context, change RosterChange) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyRosterChange(ctx, change); err != nil {
		r.logger.Printf("Publishing %s change for player %s: %v", change.Kind, change.Player.GDID, err)
	}
}

// Refresh reconciles today's rosters.
func (r *Reconciler) Refresh(ctx context.Context) ([]*store.Player, error) {
	records, err := r.source.FetchRoster(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("fetching today's rosters: %w", err)
	}
	return r.ReconcileRoster(ctx, records)
}

// ResolveByName finds a player by case-insensitive substrings of first and
// last name. When several players match the earliest stored one is returned.
func (r *Reconciler) ResolveByName(ctx context.Context, first, last string) (*store.Player, error) {
	if first == "" && last == "" {
		return nil, fmt.Errorf("%w: empty name", ErrIdentityNotFound)
	}
	return r.resolve(ctx, store.PlayerQuery{FirstName: first, LastName: last}, first+" "+last)
}

// ResolveByID finds a player by remote Gameday id.
func (r *Reconciler) ResolveByID(ctx context.Context, gdid string) (*store.Player, error) {
	if gdid == "" {
		return nil, fmt.Errorf("%w: empty id", ErrIdentityNotFound)
	}
	return r.resolve(ctx, store.PlayerQuery{GDID: gdid}, gdid)
}

func (r *Reconciler) resolve(ctx context.Context, q store.PlayerQuery, label string) (*store.Player, error) {
	p, err := r.store.FindPlayer(ctx, q)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up %s: %w", label, err)
	}

	r.logger.Printf("Player %s not in identity store, refreshing rosters", label)
	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Printf("Refreshing rosters: %v", err)
	}

	p, err = r.store.FindPlayer(ctx, q)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, label)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", label, err)
	}
	return p, nil
}
