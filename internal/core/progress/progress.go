// Package progress holds the pure parts of progress and coverage reporting.
package progress

import "math"

// Artifact is the minimal view of a user story needed to compute progress.
type Artifact struct {
	ID         int64
	SlotID     *int64
	IsComplete bool
}

// SelectArtifacts picks one artifact per slot. A completed artifact wins
// over an unfinished one; among equals the most recent (highest id) wins.
// Artifacts with no slot are ignored.
func SelectArtifacts(artifacts []Artifact) map[int64]Artifact {
	chosen := make(map[int64]Artifact)
	for _, a := range artifacts {
		if a.SlotID == nil {
			continue
		}
		current, ok := chosen[*a.SlotID]
		if !ok || better(a, current) {
			chosen[*a.SlotID] = a
		}
	}
	return chosen
}

func better(a, b Artifact) bool {
	if a.IsComplete != b.IsComplete {
		return a.IsComplete
	}
	return a.ID > b.ID
}

// Coverage is the aggregate for one signal.
type Coverage struct {
	Count       int
	AvgStrength float64
}

// Gaps returns the declared signals with no tagged artifacts, in declared order.
func Gaps(declared []string, coverage map[string]Coverage) []string {
	gaps := []string{}
	for _, id := range declared {
		if c, ok := coverage[id]; ok && c.Count > 0 {
			continue
		}
		gaps = append(gaps, id)
	}
	return gaps
}

// RoundStrength rounds an average to one decimal place for display.
func RoundStrength(v float64) float64 {
	return math.Round(v*10) / 10
}

// Summary counts completed slots.
type Summary struct {
	Total     int
	Completed int
	Percent   int
}

// Summarize builds a Summary; Percent is floored.
func Summarize(total, completed int) Summary {
	s := Summary{Total: total, Completed: completed}
	if total > 0 {
		s.Percent = completed * 100 / total
	}
	return s
}
