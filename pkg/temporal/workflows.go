package temporal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// Workflow IDs
	AppearanceWorkflowIDPrefix = "appearance-"
	BatchWorkflowIDPrefix      = "appearance-batch-"

	// Activity names
	ComputeAppearanceActivityName = "compute-appearance"
	SaveResultActivityName        = "save-appearance-result"

	// Application error types
	InvalidWindowErrorType = "InvalidWindow"

	// Default values
	DefaultTaskQueue = "appearance-task-queue"
)

// AppearanceWorkflow computes the joint presence for one lesson and stores the result
func AppearanceWorkflow(ctx workflow.Context, request AppearanceRequest) (*AppearanceResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting appearance workflow", "lessonID", request.LessonID)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{InvalidWindowErrorType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result *AppearanceResult
	err := workflow.ExecuteActivity(ctx, ComputeAppearanceActivityName, request).Get(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to compute appearance: %w", err)
	}

	// Persisting is best effort; the computed value is still returned
	if err := workflow.ExecuteActivity(ctx, SaveResultActivityName, result).Get(ctx, nil); err != nil {
		logger.Warn("Failed to save appearance result", "lessonID", request.LessonID, "error", err)
	}

	logger.Info("Appearance computed", "lessonID", request.LessonID, "seconds", result.Seconds)
	return result, nil
}

// BatchAppearanceWorkflow fans out one child AppearanceWorkflow per lesson.
// Lesson IDs must be unique within a batch: a repeated ID is not computed again
// and is reported in Failed, as is a missing ID.
func BatchAppearanceWorkflow(ctx workflow.Context, requests []AppearanceRequest) (*BatchResult, error) {
	logger := workflow.GetLogger(ctx)
	batchID := workflow.GetInfo(ctx).WorkflowExecution.ID
	logger.Info("Starting batch appearance workflow", "batchID", batchID, "lessonCount", len(requests))

	batch := &BatchResult{
		BatchID: batchID,
		Results: []*AppearanceResult{},
		Failed:  map[string]string{},
	}

	if len(requests) == 0 {
		return batch, nil
	}

	type pendingChild struct {
		lessonID string
		future   workflow.ChildWorkflowFuture
	}

	seen := make(map[string]bool, len(requests))
	pending := make([]pendingChild, 0, len(requests))
	for _, req := range requests {
		if req.LessonID == "" {
			logger.Warn("Skipping lesson without ID", "batchID", batchID)
			batch.addFailure(req.LessonID, "lesson id is required")
			continue
		}
		if seen[req.LessonID] {
			logger.Warn("Skipping duplicate lesson", "batchID", batchID, "lessonID", req.LessonID)
			batch.addFailure(req.LessonID, "duplicate lesson id in batch, only the first occurrence was computed")
			continue
		}
		seen[req.LessonID] = true

		childOptions := workflow.ChildWorkflowOptions{
			WorkflowID: GenerateChildWorkflowID(batchID, req.LessonID),
		}
		childCtx := workflow.WithChildOptions(ctx, childOptions)
		pending = append(pending, pendingChild{
			lessonID: req.LessonID,
			future:   workflow.ExecuteChildWorkflow(childCtx, AppearanceWorkflow, req),
		})
	}

	for _, child := range pending {
		var result *AppearanceResult
		if err := child.future.Get(ctx, &result); err != nil {
			logger.Error("Child workflow failed", "lessonID", child.lessonID, "error", err)
			// Keep going; one bad lesson must not sink the batch
			batch.addFailure(child.lessonID, err.Error())
			continue
		}

		if result.Matched != nil && !*result.Matched {
			batch.Mismatched = append(batch.Mismatched, child.lessonID)
		}
		batch.Results = append(batch.Results, result)
	}

	logger.Info("Completed batch appearance workflow",
		"batchID", batchID,
		"succeeded", len(batch.Results),
		"failed", len(batch.Failed),
		"mismatched", len(batch.Mismatched))

	return batch, nil
}

// Utility functions for workflow IDs

// GenerateAppearanceWorkflowID creates a workflow ID for a single lesson
func GenerateAppearanceWorkflowID(lessonID string) string {
	return AppearanceWorkflowIDPrefix + lessonID
}

// GenerateBatchWorkflowID creates a unique workflow ID for a batch
func GenerateBatchWorkflowID() string {
	return BatchWorkflowIDPrefix + uuid.NewString()
}

// GenerateChildWorkflowID creates the ID of a lesson's child workflow within a batch
func GenerateChildWorkflowID(batchID, lessonID string) string {
	return fmt.Sprintf("%s-%s", batchID, lessonID)
}
