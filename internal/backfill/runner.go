// Package backfill reconciles rosters across a range of dates.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gameday/pkg/gameday"
	"github.com/fortuna/gameday/pkg/identity"
	"github.com/fortuna/gameday/pkg/store"
)

// RosterReconciler writes roster rows to the identity store.
type RosterReconciler interface {
	ReconcileRoster(ctx context.Context, records []gameday.PlayerAttributes) ([]*store.Player, error)
}

// Runner walks dates one at a time. The fetch client's delay is the only
// pacing between requests.
type Runner struct {
	source     identity.RosterSource
	reconciler RosterReconciler
}

func NewRunner(source identity.RosterSource, reconciler RosterReconciler) *Runner {
	return &Runner{source: source, reconciler: reconciler}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
// Dry runs fetch rosters without reconciling them.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Summary, error) {
	var summary Summary
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	switch spec.Type {
	case JobTypeSeason, JobTypeDateRange:
	default:
		err := fmt.Errorf("unsupported job type %q", spec.Type)
		reporter.OnJobError(err)
		return summary, err
	}

	dates := enumerateDates(spec.Start, spec.End)
	if len(dates) == 0 {
		reporter.OnProgress("No dates to process", 0, 0)
	}

	total := len(dates)
	for idx, date := range dates {
		if err := ctx.Err(); err != nil {
			reporter.OnJobError(err)
			return summary, err
		}
		reporter.OnDateStart(date, idx, total)

		records, err := r.source.FetchRoster(ctx, date)
		if err != nil {
			err = fmt.Errorf("fetching rosters for %s: %w", date.Format("2006-01-02"), err)
			reporter.OnJobError(err)
			return summary, err
		}

		players := 0
		if !spec.DryRun && len(records) > 0 {
			reconciled, err := r.reconciler.ReconcileRoster(ctx, records)
			if err != nil {
				err = fmt.Errorf("reconciling rosters for %s: %w", date.Format("2006-01-02"), err)
				reporter.OnJobError(err)
				return summary, err
			}
			players = len(reconciled)
		}

		summary.Dates++
		summary.Rows += len(records)
		summary.Players += players
		reporter.OnRosterProcessed(date, len(records), players)
		reporter.OnProgress(fmt.Sprintf("Processed %s", date.Format("Jan 2, 2006")), idx+1, total)
	}

	reporter.OnJobComplete(summary)
	return summary, nil
}

func enumerateDates(start, end time.Time) []time.Time {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if end.Before(start) {
		start, end = end, start
	}

	var dates []time.Time
	current := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	final := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for !current.After(final) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 1)
	}

	return dates
}
