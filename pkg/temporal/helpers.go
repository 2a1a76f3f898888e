package temporal

import (
	"time"

	"github.com/leowmjw/go-temporal-appearance/pkg/timeline"
)

// Evaluate runs the overlap engine for a request without any Temporal machinery
func Evaluate(request AppearanceRequest, now time.Time) (*AppearanceResult, error) {
	window, err := request.Window()
	if err != nil {
		return nil, err
	}

	pupil := timeline.Presence(request.Intervals.Pupil, window)
	tutor := timeline.Presence(request.Intervals.Tutor, window)
	overlap := timeline.Overlap(pupil, tutor)

	result := &AppearanceResult{
		LessonID:   request.LessonID,
		Seconds:    timeline.Intersect(pupil, tutor),
		Window:     window,
		Pupil:      pupil,
		Tutor:      tutor,
		Overlap:    overlap,
		ComputedAt: now.UTC(),
	}

	if request.Answer != nil {
		answer := *request.Answer
		matched := answer == result.Seconds
		result.Answer = &answer
		result.Matched = &matched
	}

	return result, nil
}
