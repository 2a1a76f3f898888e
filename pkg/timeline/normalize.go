package timeline

// Normalize pairs up raw timestamps as consecutive (start, end) values and clips
// each pair to the window. Inverted pairs and pairs that fall entirely outside
// the window are skipped. A trailing odd timestamp is ignored.
// The result is in emission order, not sorted.
func Normalize(raw []int64, window Interval) Timeline {
	intervals := make(Timeline, 0, len(raw)/2)

	for i := 0; i+1 < len(raw); i += 2 {
		interval := Interval{Start: raw[i], End: raw[i+1]}
		if !interval.Valid() {
			continue
		}

		clipped, ok := interval.Clip(window)
		if !ok {
			continue
		}
		intervals = append(intervals, clipped)
	}

	return intervals
}
