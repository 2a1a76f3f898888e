package timeline

import (
	"sort"
)

// Merge collapses overlapping or touching intervals into a disjoint timeline
// sorted by start. Intervals that share an endpoint are merged. The input is
// not modified.
func Merge(intervals Timeline) Timeline {
	if len(intervals) == 0 {
		return Timeline{}
	}

	sorted := make(Timeline, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make(Timeline, 0, len(sorted))
	current := sorted[0]

	for _, next := range sorted[1:] {
		if next.Start <= current.End {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}

	return append(merged, current)
}
