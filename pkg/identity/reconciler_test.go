package identity_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/gameday/pkg/gameday"
	"github.com/fortuna/gameday/pkg/identity"
	"github.com/fortuna/gameday/pkg/store"
)

type fakeSource struct {
	mu      sync.Mutex
	records []gameday.PlayerAttributes
	err     error
	calls   int
	dates   []time.Time
}

func (f *fakeSource) FetchRoster(ctx context.Context, date time.Time) ([]gameday.PlayerAttributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.dates = append(f.dates, date)
	return f.records, f.err
}

type countingStore struct {
	*store.MemoryStore
	mu      sync.Mutex
	updates int
	creates int
}

func (c *countingStore) CreatePlayer(ctx context.Context, p *store.Player) error {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.MemoryStore.CreatePlayer(ctx, p)
}

func (c *countingStore) UpdatePlayer(ctx context.Context, p *store.Player) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.MemoryStore.UpdatePlayer(ctx, p)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []identity.RosterChange
	err     error
}

func (n *recordingNotifier) NotifyRosterChange(ctx context.Context, c identity.RosterChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

// clock hands out strictly increasing instants.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func roster() []gameday.PlayerAttributes {
	return []gameday.PlayerAttributes{
		{ID: "477132", First: "Clayton", Last: "Kershaw", Num: "22", BoxName: "Kershaw", Throws: "L", Bats: "L", Position: "P", Status: "A", TeamAbbrev: "LAD", TeamID: "119"},
		{ID: "571970", First: "Yasiel", Last: "Puig", Num: "66", BoxName: "Puig", Throws: "R", Bats: "R", Position: "RF", Status: "A", TeamAbbrev: "LAD", TeamID: "119"},
		{ID: "543807", First: "Matt", Last: "Kemp", Num: "27", BoxName: "Kemp", Throws: "R", Bats: "R", Position: "RF", Status: "A", TeamAbbrev: "SD", TeamID: "135"},
	}
}

func newReconciler(s store.Store, src identity.RosterSource, opts ...identity.Option) *identity.Reconciler {
	c := &clock{now: time.Date(2015, 4, 5, 12, 0, 0, 0, time.UTC)}
	opts = append([]identity.Option{
		identity.WithLogger(log.New(io.Discard, "", 0)),
		identity.WithClock(c.Now),
	}, opts...)
	return identity.NewReconciler(s, src, opts...)
}

func TestReconcileRoster_CreatesPlayersAndTeams(t *testing.T) {
	mem := store.NewMemoryStore()
	r := newReconciler(mem, &fakeSource{})

	players, err := r.ReconcileRoster(context.Background(), roster())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("Expected 3 players, got %d", len(players))
	}
	teams := mem.Teams()
	if len(teams) != 2 || teams[0].Abbrev != "LAD" || teams[1].Abbrev != "SD" {
		t.Errorf("unexpected teams %+v", teams)
	}
	if players[2].TeamID != teams[1].ID {
		t.Errorf("Expected Kemp on SD, got team %d", players[2].TeamID)
	}
	if players[0].Throws != "L" || players[0].BoxName != "Kershaw" || players[0].DateModified.IsZero() {
		t.Errorf("unexpected stored fields %+v", players[0])
	}
	if mem.Flushes() != 1 {
		t.Errorf("Expected exactly one flush, got %d", mem.Flushes())
	}
}

func TestReconcileRoster_Idempotent(t *testing.T) {
	cs := &countingStore{MemoryStore: store.NewMemoryStore()}
	r := newReconciler(cs, &fakeSource{})
	ctx := context.Background()

	if _, err := r.ReconcileRoster(ctx, roster()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := cs.Players()

	if _, err := r.ReconcileRoster(ctx, roster()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after := cs.Players()

	if cs.creates != 3 || cs.updates != 0 {
		t.Errorf("Expected 3 creates and no updates, got %d and %d", cs.creates, cs.updates)
	}
	if len(after) != len(before) {
		t.Fatalf("Expected %d players, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("player %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if len(cs.Teams()) != 2 {
		t.Errorf("Expected 2 teams, got %d", len(cs.Teams()))
	}
}

func TestReconcileRoster_Drift(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*gameday.PlayerAttributes)
		changed []string
	}{
		{"number", func(p *gameday.PlayerAttributes) { p.Num = "23" }, []string{"number"}},
		{"position", func(p *gameday.PlayerAttributes) { p.Position = "LF" }, []string{"position"}},
		{"status", func(p *gameday.PlayerAttributes) { p.Status = "D60" }, []string{"status"}},
		{"team", func(p *gameday.PlayerAttributes) { p.TeamID = "135"; p.TeamAbbrev = "SD" }, []string{"team"}},
		{"untracked field", func(p *gameday.PlayerAttributes) { p.BoxName = "Puig, Y" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			n := &recordingNotifier{}
			r := newReconciler(mem, &fakeSource{}, identity.WithNotifier(n))
			ctx := context.Background()

			if _, err := r.ReconcileRoster(ctx, roster()); err != nil {
				t.Fatalf("seed: %v", err)
			}
			before, _ := mem.FindPlayer(ctx, store.PlayerQuery{GDID: "571970"})

			recs := roster()
			tt.mutate(&recs[1])
			if _, err := r.ReconcileRoster(ctx, recs); err != nil {
				t.Fatalf("reconcile: %v", err)
			}
			after, _ := mem.FindPlayer(ctx, store.PlayerQuery{GDID: "571970"})

			if tt.changed == nil {
				if *after != *before {
					t.Errorf("Expected no write, got %+v -> %+v", before, after)
				}
				if len(n.changes) != 3 {
					t.Errorf("Expected only the 3 creations to be notified, got %d", len(n.changes))
				}
				return
			}

			if !after.DateModified.After(before.DateModified) {
				t.Errorf("Expected a fresh timestamp, got %v then %v", before.DateModified, after.DateModified)
			}
			if after.Number != recs[1].Num || after.Position != recs[1].Position || after.Status != recs[1].Status {
				t.Errorf("Expected new values, got %+v", after)
			}
			last := n.changes[len(n.changes)-1]
			if last.Kind != identity.ChangeUpdated || len(last.Changed) != 1 || last.Changed[0] != tt.changed[0] {
				t.Errorf("unexpected change notification %+v", last)
			}
			if tt.name == "team" {
				team, _ := mem.FindTeam(ctx, store.TeamQuery{GDID: "135"})
				if after.TeamID != team.ID || last.TeamAbbrev != "SD" {
					t.Errorf("Expected player moved to SD, got team %d", after.TeamID)
				}
			}
		})
	}
}

func TestReconcileRoster_SkipsFailedRows(t *testing.T) {
	mem := store.NewMemoryStore()
	r := newReconciler(mem, &fakeSource{})

	recs := roster()
	recs = append(recs,
		gameday.PlayerAttributes{ID: "", First: "No", Last: "Id", TeamID: "119", TeamAbbrev: "LAD"},
		// another remote team claiming an existing abbreviation
		gameday.PlayerAttributes{ID: "999", First: "Dup", Last: "Team", TeamID: "999", TeamAbbrev: "LAD"},
		gameday.PlayerAttributes{ID: "605141", First: "Mookie", Last: "Betts", TeamID: "", TeamAbbrev: "BOS"},
	)

	players, err := r.ReconcileRoster(context.Background(), recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 3 {
		t.Errorf("Expected 3 players, got %d", len(players))
	}
	if len(mem.Players()) != 3 {
		t.Errorf("Expected the failed rows not to be stored, got %d players", len(mem.Players()))
	}
	if _, err := mem.FindPlayer(context.Background(), store.PlayerQuery{GDID: "605141"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected a row without a team id to be skipped, got %v", err)
	}
	if n := len(mem.Teams()); n != 2 {
		t.Errorf("Expected 2 teams, got %d", n)
	}
	if mem.Flushes() != 1 {
		t.Errorf("Expected one flush, got %d", mem.Flushes())
	}
}

// cancellingNotifier cancels the batch context on the first change it sees.
type cancellingNotifier struct {
	cancel context.CancelFunc
}

func (n *cancellingNotifier) NotifyRosterChange(ctx context.Context, c identity.RosterChange) error {
	n.cancel()
	return nil
}

func TestReconcileRoster_CancelledBatchFlushesReconciledRows(t *testing.T) {
	tests := []struct {
		name          string
		cancelUpfront bool
		stored        int
	}{
		{"cancelled after first row", false, 1},
		{"cancelled before any row", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelUpfront {
				cancel()
			}
			r := newReconciler(mem, &fakeSource{}, identity.WithNotifier(&cancellingNotifier{cancel: cancel}))

			players, err := r.ReconcileRoster(ctx, roster())
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
			if len(players) != tt.stored {
				t.Errorf("Expected %d players, got %d", tt.stored, len(players))
			}
			if n := len(mem.Players()); n != tt.stored {
				t.Errorf("Expected %d stored players, got %d", tt.stored, n)
			}
			if mem.Flushes() != 1 {
				t.Errorf("Expected one flush, got %d", mem.Flushes())
			}
		})
	}
}

func TestReconcileRoster_ConcurrentBatches(t *testing.T) {
	mem := store.NewMemoryStore()
	r := newReconciler(mem, &fakeSource{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.ReconcileRoster(context.Background(), roster()); err != nil {
				t.Errorf("reconcile: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := len(mem.Players()); n != 3 {
		t.Errorf("Expected 3 players after concurrent batches, got %d", n)
	}
	if n := len(mem.Teams()); n != 2 {
		t.Errorf("Expected 2 teams after concurrent batches, got %d", n)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("known player does not refresh", func(t *testing.T) {
		mem := store.NewMemoryStore()
		src := &fakeSource{}
		r := newReconciler(mem, src)
		r.ReconcileRoster(ctx, roster())

		p, err := r.ResolveByName(ctx, "clayton", "KERSHAW")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.GDID != "477132" {
			t.Errorf("unexpected player %+v", p)
		}
		if src.calls != 0 {
			t.Errorf("Expected no refresh, got %d", src.calls)
		}
	})

	t.Run("miss refreshes once then finds", func(t *testing.T) {
		mem := store.NewMemoryStore()
		src := &fakeSource{records: roster()}
		r := newReconciler(mem, src)

		p, err := r.ResolveByID(ctx, "543807")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.LastName != "Kemp" {
			t.Errorf("unexpected player %+v", p)
		}
		if src.calls != 1 || !src.dates[0].IsZero() {
			t.Errorf("Expected one refresh for today, got %d calls with %v", src.calls, src.dates)
		}
	})

	t.Run("unknown player refreshes exactly once", func(t *testing.T) {
		mem := store.NewMemoryStore()
		src := &fakeSource{records: roster()}
		r := newReconciler(mem, src)

		_, err := r.ResolveByName(ctx, "Mike", "Trout")
		if !errors.Is(err, identity.ErrIdentityNotFound) {
			t.Fatalf("Expected ErrIdentityNotFound, got %v", err)
		}
		if src.calls != 1 {
			t.Errorf("Expected exactly one refresh, got %d", src.calls)
		}
	})

	t.Run("refresh failure still retries lookup", func(t *testing.T) {
		mem := store.NewMemoryStore()
		src := &fakeSource{err: errors.New("provider down")}
		r := newReconciler(mem, src)

		_, err := r.ResolveByID(ctx, "1")
		if !errors.Is(err, identity.ErrIdentityNotFound) {
			t.Fatalf("Expected ErrIdentityNotFound, got %v", err)
		}
		if src.calls != 1 {
			t.Errorf("Expected exactly one refresh, got %d", src.calls)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		src := &fakeSource{}
		r := newReconciler(store.NewMemoryStore(), src)
		if _, err := r.ResolveByName(ctx, "", ""); !errors.Is(err, identity.ErrIdentityNotFound) {
			t.Errorf("Expected ErrIdentityNotFound, got %v", err)
		}
		if src.calls != 0 {
			t.Errorf("Expected no refresh for an empty name, got %d", src.calls)
		}
	})
}

func TestNotifierFailureIsNotFatal(t *testing.T) {
	mem := store.NewMemoryStore()
	n := &recordingNotifier{err: errors.New("redis down")}
	r := newReconciler(mem, &fakeSource{}, identity.WithNotifier(n))

	players, err := r.ReconcileRoster(context.Background(), roster())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 3 || len(n.changes) != 3 {
		t.Errorf("Expected 3 players and 3 notifications, got %d and %d", len(players), len(n.changes))
	}
	for _, c := range n.changes {
		if c.Kind != identity.ChangeCreated {
			t.Errorf("Expected created change, got %s", c.Kind)
		}
	}
}
