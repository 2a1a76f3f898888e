package hcl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

// AssertRequestsEqual compares two AppearanceRequest objects in tests, treating nil and empty timestamp lists alike
func AssertRequestsEqual(t *testing.T, expected, actual *temporal.AppearanceRequest) {
	t.Helper()
	assert.Equal(t, expected.LessonID, actual.LessonID)
	assertTimestampsEqual(t, "lesson", expected.Intervals.Lesson, actual.Intervals.Lesson)
	assertTimestampsEqual(t, "pupil", expected.Intervals.Pupil, actual.Intervals.Pupil)
	assertTimestampsEqual(t, "tutor", expected.Intervals.Tutor, actual.Intervals.Tutor)

	if expected.Answer == nil || actual.Answer == nil {
		assert.Equal(t, expected.Answer == nil, actual.Answer == nil, "answer presence")
		return
	}
	assert.Equal(t, *expected.Answer, *actual.Answer)
}

func assertTimestampsEqual(t *testing.T, field string, expected, actual []int64) {
	t.Helper()
	if len(expected) == 0 && len(actual) == 0 {
		return
	}
	assert.Equal(t, expected, actual, field)
}
