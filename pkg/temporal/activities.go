package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/leowmjw/go-temporal-appearance/pkg/timeline"
)

// Recorder receives computation outcomes, typically for metrics
type Recorder interface {
	RecordAppearance(seconds int64, matched *bool)
	RecordFailure(reason string)
}

// Activities interface defines all the activities used by workflows
type Activities interface {
	ComputeAppearanceActivity(ctx context.Context, request AppearanceRequest) (*AppearanceResult, error)
	SaveResultActivity(ctx context.Context, result *AppearanceResult) error
}

// ActivitiesImpl implements the Activities interface
type ActivitiesImpl struct {
	logger   *slog.Logger
	store    ResultStore
	recorder Recorder
	now      func() time.Time
}

// NewActivitiesImpl creates a new activities implementation. store and recorder may be nil.
func NewActivitiesImpl(logger *slog.Logger, store ResultStore, recorder Recorder) *ActivitiesImpl {
	return &ActivitiesImpl{
		logger:   logger,
		store:    store,
		recorder: recorder,
		now:      time.Now,
	}
}

// ActivityRegistry is satisfied by worker.Worker and the testsuite environments
type ActivityRegistry interface {
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register registers all activities under the names the workflows execute them by
func (a *ActivitiesImpl) Register(r ActivityRegistry) {
	r.RegisterActivityWithOptions(a.ComputeAppearanceActivity, activity.RegisterOptions{Name: ComputeAppearanceActivityName})
	r.RegisterActivityWithOptions(a.SaveResultActivity, activity.RegisterOptions{Name: SaveResultActivityName})
}

// ComputeAppearanceActivity runs the overlap engine for one lesson
func (a *ActivitiesImpl) ComputeAppearanceActivity(ctx context.Context, request AppearanceRequest) (*AppearanceResult, error) {
	a.logger.Info("Computing appearance",
		"lessonID", request.LessonID,
		"pupilTimestamps", len(request.Intervals.Pupil),
		"tutorTimestamps", len(request.Intervals.Tutor))

	result, err := Evaluate(request, a.now())
	if err != nil {
		a.recordFailure("invalid_window")
		a.logger.Warn("Rejected lesson", "lessonID", request.LessonID, "error", err)
		if errors.Is(err, timeline.ErrInvalidWindow) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidWindowErrorType, err)
		}
		return nil, fmt.Errorf("failed to compute appearance: %w", err)
	}

	if a.recorder != nil {
		a.recorder.RecordAppearance(result.Seconds, result.Matched)
	}

	if result.Matched != nil && !*result.Matched {
		a.logger.Warn("Appearance does not match expected answer",
			"lessonID", request.LessonID, "seconds", result.Seconds, "answer", *result.Answer)
	}

	a.logger.Info("Computed appearance", "lessonID", request.LessonID, "seconds", result.Seconds)
	return result, nil
}

// SaveResultActivity persists a result. Without a configured store it does nothing.
func (a *ActivitiesImpl) SaveResultActivity(ctx context.Context, result *AppearanceResult) error {
	if a.store == nil {
		return nil
	}
	if result == nil {
		return temporal.NewNonRetryableApplicationError("nil result", "InvalidResult", nil)
	}

	if err := a.store.SaveResult(ctx, result); err != nil {
		a.recordFailure("store")
		a.logger.Error("Failed to save result", "lessonID", result.LessonID, "error", err)
		return fmt.Errorf("failed to save result: %w", err)
	}

	a.logger.Info("Saved appearance result", "lessonID", result.LessonID)
	return nil
}

func (a *ActivitiesImpl) recordFailure(reason string) {
	if a.recorder != nil {
		a.recorder.RecordFailure(reason)
	}
}
