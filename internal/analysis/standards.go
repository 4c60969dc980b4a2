package analysis

import (
	"strconv"
)

// StandardOrder lists motivational standards from fastest to slowest
var StandardOrder = []string{"AAAA", "AAA", "AA", "A", "BB", "B"}

const (
	// SlowerThanB is reported when no cut has been reached
	SlowerThanB = "Slower than B"
	// TopStandard is the next standard once AAAA is reached
	TopStandard = "MAX"
)

// Cuts maps a standard name such as "BB" to its cut time
type Cuts map[string]string

// Standards is a motivational time standards document:
// group → age group → course → stroke → distance → cuts.
//
//	{"Girls": {"11-12": {"SCY": {"FR": {"50": {"B": "33.99", "A": "29.59"}}}}}}
type Standards map[string]map[string]map[string]map[string]map[string]Cuts

// Assessment places a swim against the standards for its event
type Assessment struct {
	Achieved string  `json:"achieved"`
	Next     string  `json:"next"`
	NextCut  float64 `json:"next_cut,omitempty"`
	// Delta is the time still to drop to reach NextCut
	Delta float64 `json:"delta,omitempty"`
}

// Cuts returns the cut times for an event label such as "50 FR SCY"
func (s Standards) Cuts(label, group, age string) (Cuts, bool) {
	ev := ParseEvent(label)
	if ev.Distance <= 0 || ev.Stroke == "" || ev.Course == "" {
		return nil, false
	}
	cuts, ok := s[group][age][ev.Course][ev.Stroke][strconv.Itoa(ev.Distance)]
	return cuts, ok && len(cuts) > 0
}

// Assess reports the fastest standard seconds meets and the next one to aim for.
// The second result is false when the standards have no cuts for the event.
func (s Standards) Assess(seconds float64, label, group, age string) (Assessment, bool) {
	cuts, ok := s.Cuts(label, group, age)
	if !ok {
		return Assessment{}, false
	}

	a := Assessment{Achieved: SlowerThanB, Next: "B"}
	for i, std := range StandardOrder {
		cut, ok := TimeToSeconds(cuts[std])
		if !ok {
			continue
		}
		if seconds <= cut {
			a.Achieved = std
			a.Next = TopStandard
			if i > 0 {
				a.Next = StandardOrder[i-1]
			}
			break
		}
		a.Next = std
	}

	if cut, ok := TimeToSeconds(cuts[a.Next]); ok {
		a.NextCut = cut
		a.Delta = seconds - cut
	}
	return a, true
}
