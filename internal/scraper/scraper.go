package scraper

import (
	"context"
	"errors"

	"github.com/williampepple1/swimtimes/pkg/models"
)

// ErrBrowserStart means the automated browser session could not be established
var ErrBrowserStart = errors.New("starting browser session")

// Navigator looks up one athlete's result history on the portal.
// A lookup that finds nothing is reported through TableResult.Status, not as an error.
type Navigator interface {
	Lookup(ctx context.Context, athlete models.Athlete, index int) (models.TableResult, error)
	Close()
}

// noResults builds the zero-results outcome for athlete
func noResults(athlete models.Athlete, reason string) models.TableResult {
	return models.TableResult{Athlete: athlete, Status: models.StatusNoResults, Reason: reason}
}

// timedOut builds the outcome for a wait that exceeded its budget
func timedOut(athlete models.Athlete, step string) models.TableResult {
	return models.TableResult{Athlete: athlete, Status: models.StatusTimeout, Reason: "timed out waiting for " + step}
}

// isTimeout reports whether err came from a per-wait deadline
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
