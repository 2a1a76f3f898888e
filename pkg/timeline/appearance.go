package timeline

// Presence is the merged timeline of one party inside a reference window
func Presence(raw []int64, window Interval) Timeline {
	return Merge(Normalize(raw, window))
}

// Appearance returns the number of seconds during which both parties were
// present inside the window. The only error is ErrInvalidWindow.
func Appearance(window Interval, a, b []int64) (int64, error) {
	if err := validateWindow(window); err != nil {
		return 0, err
	}
	return Intersect(Presence(a, window), Presence(b, window)), nil
}
