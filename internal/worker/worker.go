package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/internal/extraction"
	"github.com/williampepple1/swimtimes/internal/logger"
	"github.com/williampepple1/swimtimes/internal/scraper"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// Runner walks the roster one athlete at a time
type Runner struct {
	Config    *config.ScraperConfig
	Navigator scraper.Navigator
	Extractor *extraction.Extractor

	pause func(ctx context.Context, d time.Duration) error
}

// Outcome records what happened for one athlete
type Outcome struct {
	Athlete models.Athlete
	Status  models.Status
	Records int
	Reason  string
	Err     string
}

// Summary is the combined result of a roster run
type Summary struct {
	Records  []models.ResultRecord
	Outcomes []Outcome
}

// NewRunner creates a sequential roster runner
func NewRunner(cfg *config.ScraperConfig, nav scraper.Navigator) *Runner {
	return &Runner{
		Config:    cfg,
		Navigator: nav,
		Extractor: extraction.NewExtractor(),
		pause:     sleepContext,
	}
}

// Run looks up every athlete in roster order and concatenates their records.
// A failure for one athlete yields zero records for that athlete only.
func (r *Runner) Run(ctx context.Context, roster []models.Athlete) Summary {
	summary := Summary{
		Records:  []models.ResultRecord{},
		Outcomes: make([]Outcome, 0, len(roster)),
	}

	for i, athlete := range roster {
		if i > 0 && r.Config.PaceDelay > 0 {
			if err := r.pause(ctx, r.Config.PaceDelay); err != nil {
				logger.Warn("Pacing interrupted", logger.Fields{"athlete": athlete.DisplayName(), "error": err.Error()})
			}
		}

		start := time.Now()
		records, outcome := r.process(ctx, i, athlete)
		summary.Records = append(summary.Records, records...)
		summary.Outcomes = append(summary.Outcomes, outcome)

		fields := logger.Fields{
			"athlete":  athlete.DisplayName(),
			"status":   string(outcome.Status),
			"records":  outcome.Records,
			"duration": time.Since(start).String(),
		}
		if outcome.Reason != "" {
			fields["reason"] = outcome.Reason
		}
		switch outcome.Status {
		case models.StatusFound:
			logger.Info("Fetched results", fields)
		case models.StatusNoResults:
			logger.Info("No results for athlete", fields)
		case models.StatusTimeout:
			logger.Warn("Timed out looking up athlete", fields)
		default:
			logger.Error("Lookup failed", fields, fmt.Errorf("%s", outcome.Err))
		}
	}

	return summary
}

// process isolates one athlete's lookup, including panics inside the navigator
func (r *Runner) process(ctx context.Context, index int, athlete models.Athlete) (records []models.ResultRecord, outcome Outcome) {
	outcome = Outcome{Athlete: athlete, Status: models.StatusFailed}

	defer func() {
		if p := recover(); p != nil {
			records = nil
			outcome = Outcome{Athlete: athlete, Status: models.StatusFailed, Err: fmt.Sprintf("panic: %v", p)}
		}
	}()

	res, err := r.Navigator.Lookup(ctx, athlete, index)
	if err != nil {
		outcome.Err = err.Error()
		outcome.Reason = res.Reason
		return nil, outcome
	}

	outcome.Status = res.Status
	outcome.Reason = res.Reason
	if !res.Found() {
		return nil, outcome
	}

	records = r.Extractor.Extract(res.Table, athlete)
	outcome.Records = len(records)
	return records, outcome
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
