package temporal

import (
	"context"
	"errors"
	"time"

	"github.com/leowmjw/go-temporal-appearance/pkg/timeline"
)

// ErrResultNotFound is returned by a ResultStore for unknown lessons
var ErrResultNotFound = errors.New("appearance result not found")

// Intervals holds the raw timestamps of one lesson in the reference fixture shape
type Intervals struct {
	Lesson []int64 `json:"lesson"`
	Pupil  []int64 `json:"pupil"`
	Tutor  []int64 `json:"tutor"`
}

// AppearanceRequest asks for the joint presence of pupil and tutor during a lesson
type AppearanceRequest struct {
	LessonID  string    `json:"lesson_id"`
	Intervals Intervals `json:"intervals"`
	Answer    *int64    `json:"answer,omitempty"` // Expected seconds, when known
}

// Window returns the lesson's reference window
func (r AppearanceRequest) Window() (timeline.Interval, error) {
	return timeline.WindowFromPair(r.Intervals.Lesson)
}

// AppearanceResult is the outcome of one appearance computation
type AppearanceResult struct {
	LessonID   string            `json:"lesson_id"`
	Seconds    int64             `json:"seconds"`
	Window     timeline.Interval `json:"window"`
	Pupil      timeline.Timeline `json:"pupil"`
	Tutor      timeline.Timeline `json:"tutor"`
	Overlap    timeline.Timeline `json:"overlap"`
	Answer     *int64            `json:"answer,omitempty"`
	Matched    *bool             `json:"matched,omitempty"`
	ComputedAt time.Time         `json:"computed_at"`
}

// BatchResult collects the outcome of a BatchAppearanceWorkflow
type BatchResult struct {
	BatchID    string              `json:"batch_id"`
	Results    []*AppearanceResult `json:"results"`
	Failed     map[string]string   `json:"failed,omitempty"`     // lessonID -> error
	Mismatched []string            `json:"mismatched,omitempty"` // lessons whose answer disagreed
}

// addFailure records why a lesson failed, keeping earlier reasons for the same ID
func (b *BatchResult) addFailure(lessonID, reason string) {
	if previous, ok := b.Failed[lessonID]; ok {
		reason = previous + "; " + reason
	}
	b.Failed[lessonID] = reason
}

// ResultStore persists computed results
type ResultStore interface {
	SaveResult(ctx context.Context, result *AppearanceResult) error
	GetResult(ctx context.Context, lessonID string) (*AppearanceResult, error)
	ListResults(ctx context.Context) ([]*AppearanceResult, error)
}
