package timeline

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	window := Interval{Start: 100, End: 200}

	tests := []struct {
		name     string
		raw      []int64
		expected Timeline
	}{
		{
			name:     "empty input",
			raw:      []int64{},
			expected: Timeline{},
		},
		{
			name:     "pair inside window",
			raw:      []int64{120, 150},
			expected: Timeline{{Start: 120, End: 150}},
		},
		{
			name:     "pairs clipped at both edges",
			raw:      []int64{50, 110, 190, 260},
			expected: Timeline{{Start: 100, End: 110}, {Start: 190, End: 200}},
		},
		{
			name:     "inverted and degenerate pairs skipped",
			raw:      []int64{150, 120, 130, 130, 140, 160},
			expected: Timeline{{Start: 140, End: 160}},
		},
		{
			name:     "pairs outside window skipped",
			raw:      []int64{10, 90, 200, 300, 80, 100},
			expected: Timeline{},
		},
		{
			name:     "odd trailing timestamp dropped",
			raw:      []int64{110, 120, 130},
			expected: Timeline{{Start: 110, End: 120}},
		},
		{
			name:     "emission order kept",
			raw:      []int64{180, 190, 110, 120},
			expected: Timeline{{Start: 180, End: 190}, {Start: 110, End: 120}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.raw, window)
			assertTimelineEqual(t, tt.expected, result)
		})
	}
}

func TestIntervalClip(t *testing.T) {
	window := Interval{Start: 0, End: 10}

	if _, ok := (Interval{Start: 10, End: 20}).Clip(window); ok {
		t.Error("interval starting at window end should clip to nothing")
	}

	clipped, ok := (Interval{Start: -5, End: 5}).Clip(window)
	if !ok || clipped != (Interval{Start: 0, End: 5}) {
		t.Errorf("expected [0, 5), got %v (ok=%v)", clipped, ok)
	}
}

func assertTimelineEqual(t *testing.T, expected, actual Timeline) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("expected %d intervals, got %d: %v", len(expected), len(actual), actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("interval %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
}
