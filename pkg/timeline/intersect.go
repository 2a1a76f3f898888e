package timeline

// Intersect returns the total length of the overlap between two merged timelines.
// Both inputs must be disjoint and sorted by start, as produced by Merge.
func Intersect(a, b Timeline) int64 {
	var total int64
	sweep(a, b, func(overlap Interval) {
		total += overlap.Duration()
	})
	return total
}

// Overlap returns the intervals during which both merged timelines are present
func Overlap(a, b Timeline) Timeline {
	result := Timeline{}
	sweep(a, b, func(overlap Interval) {
		result = append(result, overlap)
	})
	return result
}

// sweep walks both timelines with one cursor each and reports every non-empty
// overlap in ascending order. On equal ends the cursor into b advances.
func sweep(a, b Timeline, emit func(Interval)) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		overlap := Interval{
			Start: max(a[i].Start, b[j].Start),
			End:   min(a[i].End, b[j].End),
		}
		if overlap.Valid() {
			emit(overlap)
		}

		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
}
