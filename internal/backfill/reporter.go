package backfill

import (
	"log"
	"time"
)

// LogReporter writes progress lines to a logger.
type LogReporter struct {
	logger *log.Logger
	dryRun bool
}

// NewLogReporter returns a reporter logging with the "[backfill] " prefix when
// logger is nil.
func NewLogReporter(logger *log.Logger, dryRun bool) *LogReporter {
	if logger == nil {
		logger = log.New(log.Writer(), "[backfill] ", log.LstdFlags)
	}
	return &LogReporter{logger: logger, dryRun: dryRun}
}

func (c *LogReporter) OnJobStart(spec JobSpec) {
	c.logger.Printf("Starting %s job %s..%s (dry_run=%v)", spec.Type,
		spec.Start.Format("2006-01-02"), spec.End.Format("2006-01-02"), c.dryRun)
}

func (c *LogReporter) OnDateStart(date time.Time, index int, total int) {
	c.logger.Printf("[%d/%d] %s", index+1, total, date.Format("2006-01-02"))
}

func (c *LogReporter) OnRosterProcessed(date time.Time, rows int, players int) {
	c.logger.Printf("%s: %d roster rows, %d players reconciled", date.Format("2006-01-02"), rows, players)
}

func (c *LogReporter) OnProgress(message string, current int, total int) {
	c.logger.Printf("Progress: %s (%d/%d)", message, current, total)
}

func (c *LogReporter) OnJobComplete(summary Summary) {
	c.logger.Printf("Job complete: %d dates, %d rows, %d players", summary.Dates, summary.Rows, summary.Players)
}

func (c *LogReporter) OnJobError(err error) {
	c.logger.Printf("Job error: %v", err)
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec)                    {}
func (nopReporter) OnDateStart(time.Time, int, int)       {}
func (nopReporter) OnRosterProcessed(time.Time, int, int) {}
func (nopReporter) OnProgress(string, int, int)           {}
func (nopReporter) OnJobComplete(Summary)                 {}
func (nopReporter) OnJobError(error)                      {}
