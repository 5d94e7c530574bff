package backfill

import (
	"fmt"
	"strconv"
	"time"
)

// JobType enumerates the supported backfill job variants.
type JobType string

const (
	JobTypeSeason    JobType = "season"
	JobTypeDateRange JobType = "date_range"
)

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type   JobType
	Season int
	Start  time.Time
	End    time.Time
	DryRun bool
}

// SeasonSpec covers March through November of year.
func SeasonSpec(year int) JobSpec {
	start, end := seasonWindow(year)
	return JobSpec{Type: JobTypeSeason, Season: year, Start: start, End: end}
}

// DateRangeSpec parses two YYYY-MM-DD dates.
func DateRangeSpec(startStr, endStr string) (JobSpec, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return JobSpec{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return JobSpec{}, fmt.Errorf("invalid end date: %w", err)
	}
	return JobSpec{Type: JobTypeDateRange, Start: start, End: end}, nil
}

// ParseSeason accepts a four digit year.
func ParseSeason(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid season %q", s)
	}
	return year, nil
}

func seasonWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Summary totals a finished or aborted run.
type Summary struct {
	Dates   int `json:"dates"`
	Rows    int `json:"rows"`
	Players int `json:"players"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnDateStart(date time.Time, index int, total int)
	OnRosterProcessed(date time.Time, rows int, players int)
	OnProgress(message string, current int, total int)
	OnJobComplete(summary Summary)
	OnJobError(err error)
}
