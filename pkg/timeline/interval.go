package timeline

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a reference window does not satisfy start < end
var ErrInvalidWindow = errors.New("invalid window")

// Interval is a span of unix seconds. End is exclusive for duration purposes.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Timeline is a collection of intervals
type Timeline []Interval

// Duration returns the length of the interval in seconds
func (iv Interval) Duration() int64 {
	return iv.End - iv.Start
}

// Valid reports whether the interval is well formed
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Clip bounds the interval to the window. The second return value is false
// when nothing of the interval is left inside the window.
func (iv Interval) Clip(window Interval) (Interval, bool) {
	clipped := Interval{
		Start: max(iv.Start, window.Start),
		End:   min(iv.End, window.End),
	}
	if !clipped.Valid() {
		return Interval{}, false
	}
	return clipped, true
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}

// Duration returns the summed length of all intervals in the timeline
func (tl Timeline) Duration() int64 {
	var total int64
	for _, interval := range tl {
		total += interval.Duration()
	}
	return total
}

// WindowFromPair builds a reference window from a two element [start, end] sequence
func WindowFromPair(raw []int64) (Interval, error) {
	if len(raw) != 2 {
		return Interval{}, fmt.Errorf("%w: expected 2 timestamps, got %d", ErrInvalidWindow, len(raw))
	}
	window := Interval{Start: raw[0], End: raw[1]}
	if err := validateWindow(window); err != nil {
		return Interval{}, err
	}
	return window, nil
}

func validateWindow(window Interval) error {
	if !window.Valid() {
		return fmt.Errorf("%w: start %d is not before end %d", ErrInvalidWindow, window.Start, window.End)
	}
	// Clipped intervals and overlaps never exceed the window, so this bounds every duration
	if window.Duration() <= 0 {
		return fmt.Errorf("%w: length of [%d, %d] overflows int64", ErrInvalidWindow, window.Start, window.End)
	}
	return nil
}
