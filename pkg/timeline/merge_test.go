package timeline

import (
	"math/rand"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		input    Timeline
		expected Timeline
	}{
		{
			name:     "empty",
			input:    Timeline{},
			expected: Timeline{},
		},
		{
			name:     "single interval unchanged",
			input:    Timeline{{Start: 5, End: 9}},
			expected: Timeline{{Start: 5, End: 9}},
		},
		{
			name:     "overlapping intervals",
			input:    Timeline{{Start: 1, End: 5}, {Start: 3, End: 8}},
			expected: Timeline{{Start: 1, End: 8}},
		},
		{
			name:     "touching intervals merge",
			input:    Timeline{{Start: 1, End: 5}, {Start: 5, End: 8}},
			expected: Timeline{{Start: 1, End: 8}},
		},
		{
			name:     "gap of one second kept apart",
			input:    Timeline{{Start: 1, End: 5}, {Start: 6, End: 8}},
			expected: Timeline{{Start: 1, End: 5}, {Start: 6, End: 8}},
		},
		{
			name:     "unsorted with containment",
			input:    Timeline{{Start: 20, End: 30}, {Start: 1, End: 50}, {Start: 60, End: 70}, {Start: 2, End: 3}},
			expected: Timeline{{Start: 1, End: 50}, {Start: 60, End: 70}},
		},
		{
			name:     "equal starts",
			input:    Timeline{{Start: 10, End: 12}, {Start: 10, End: 40}, {Start: 10, End: 11}},
			expected: Timeline{{Start: 10, End: 40}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Merge(tt.input)
			assertTimelineEqual(t, tt.expected, result)
		})
	}
}

func TestMergeDoesNotReorderInput(t *testing.T) {
	input := Timeline{{Start: 20, End: 30}, {Start: 1, End: 5}}
	Merge(input)
	if input[0].Start != 20 {
		t.Errorf("input was modified: %v", input)
	}
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	window := Interval{Start: 0, End: 1000}

	for run := 0; run < 200; run++ {
		merged := Merge(Normalize(randomTimestamps(rng, 40, -100, 1100), window))

		// disjoint, sorted, never touching
		for k := 0; k+1 < len(merged); k++ {
			if merged[k].End >= merged[k+1].Start {
				t.Fatalf("run %d: intervals %v and %v are not disjoint", run, merged[k], merged[k+1])
			}
		}

		// merging a merged timeline is a fixed point
		again := Merge(merged)
		assertTimelineEqual(t, merged, again)
	}
}

func randomTimestamps(rng *rand.Rand, n int, lo, hi int64) []int64 {
	raw := make([]int64, n)
	for i := range raw {
		raw[i] = lo + rng.Int63n(hi-lo)
	}
	return raw
}
