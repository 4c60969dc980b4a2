// Package results orders the records of a run and describes the run.
package results

import (
	"sort"
	"strings"
	"time"

	"github.com/williampepple1/swimtimes/pkg/models"
)

// DateLayout is the portal's MM/DD/YYYY date format
const DateLayout = "01/02/2006"

// ReadableLayout is used for scraped_at_readable
const ReadableLayout = "January 2, 2006 at 3:04 PM MST"

// ParseDate parses a record date, returning the zero time when it cannot
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Sort orders records by surname ascending, then by date with the newest first.
// The surname comes from the roster athlete whose display name matches the record;
// records without a roster match fall back to the last word of their name.
// Unparseable dates sort as the earliest date. Equal keys keep their input order.
func Sort(records []models.ResultRecord, roster []models.Athlete) {
	surnames := make(map[string]string, len(roster))
	for _, a := range roster {
		if last := strings.TrimSpace(a.Last); last != "" {
			surnames[a.DisplayName()] = last
		}
	}
	surname := func(r models.ResultRecord) string {
		if last, ok := surnames[r.Name]; ok {
			return last
		}
		return r.Surname()
	}

	sort.SliceStable(records, func(i, j int) bool {
		si, sj := surname(records[i]), surname(records[j])
		if si != sj {
			return si < sj
		}
		return ParseDate(records[i].Date).After(ParseDate(records[j].Date))
	})
}

// NewMetadata describes a run that finished at now
func NewMetadata(now time.Time, records []models.ResultRecord, roster []models.Athlete) models.Metadata {
	swimmers := make([]string, 0, len(roster))
	for _, a := range roster {
		swimmers = append(swimmers, a.DisplayName())
	}
	return models.Metadata{
		ScrapedAt:         now.Format(time.RFC3339),
		ScrapedAtReadable: now.Format(ReadableLayout),
		TotalResults:      len(records),
		Swimmers:          swimmers,
	}
}
