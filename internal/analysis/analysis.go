// Package analysis derives personal bests and recent highlights from scraped results.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/williampepple1/swimtimes/internal/results"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// Event is a parsed event label such as "50 FR SCY"
type Event struct {
	Distance int
	Stroke   string
	Course   string
}

// ParseEvent splits an event label. Missing parts are left empty or zero.
func ParseEvent(label string) Event {
	parts := strings.Fields(label)
	var ev Event
	if len(parts) > 0 {
		ev.Distance, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		ev.Stroke = parts[1]
	}
	if len(parts) > 2 {
		ev.Course = parts[2]
	}
	return ev
}

// TimeToSeconds converts "1:02.34" or "23.45" to seconds. A trailing "r"
// (relay lead-off) is ignored. The second result is false when s is not a time.
func TimeToSeconds(s string) (float64, bool) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "r"))
	if clean == "" {
		return 0, false
	}

	parts := strings.Split(clean, ":")
	switch len(parts) {
	case 1:
		sec, err := strconv.ParseFloat(parts[0], 64)
		return sec, err == nil
	case 2:
		mins, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		sec, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, false
		}
		return float64(mins)*60 + sec, true
	default:
		return 0, false
	}
}

// FormatSeconds renders seconds as "M:SS.ss" or "SS.ss"
func FormatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "--"
	}
	hundredths := int(math.Round(seconds * 100))
	mins := hundredths / 6000
	rest := float64(hundredths%6000) / 100
	if mins > 0 {
		return fmt.Sprintf("%d:%05.2f", mins, rest)
	}
	return fmt.Sprintf("%.2f", rest)
}

// BestTimes returns the fastest record per event for the athlete whose name matches
// exactly, sorted by event.
// Records whose time cannot be parsed are ignored.
func BestTimes(records []models.ResultRecord, name string) []models.ResultRecord {
	bests := make(map[string]models.ResultRecord)
	bestSec := make(map[string]float64)

	for _, r := range records {
		if r.Name != name {
			continue
		}
		sec, ok := TimeToSeconds(r.Time)
		if !ok {
			continue
		}
		if cur, seen := bestSec[r.Event]; !seen || sec < cur {
			bests[r.Event] = r
			bestSec[r.Event] = sec
		}
	}

	out := make([]models.ResultRecord, 0, len(bests))
	for _, r := range bests {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event < out[j].Event })
	return out
}

// Highlights returns up to n records, newest first. Unparseable dates come last.
func Highlights(records []models.ResultRecord, n int) []models.ResultRecord {
	sorted := make([]models.ResultRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return results.ParseDate(sorted[i].Date).After(results.ParseDate(sorted[j].Date))
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Athletes lists the distinct athlete names in first-seen order
func Athletes(records []models.ResultRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}
