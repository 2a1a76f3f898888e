package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"

	"github.com/leowmjw/go-temporal-appearance/pkg/config"
	"github.com/leowmjw/go-temporal-appearance/pkg/hcl"
	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

const (
	modeLocal    = "local"
	modeWorkflow = "workflow"
)

// errMismatch is returned when -verify finds a lesson whose answer disagrees
var errMismatch = errors.New("computed appearance differs from recorded answer")

type options struct {
	path      string
	mode      string
	address   string
	namespace string
	taskQueue string
	logLevel  string
	json      bool
	verify    bool
}

// evaluator computes the result for one lesson
type evaluator func(ctx context.Context, request temporal.AppearanceRequest) (*temporal.AppearanceResult, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	logger := config.NewLogger(stderr, opts.logLevel)

	requests, err := hcl.ParseHCLPath(opts.path)
	if err != nil {
		logger.Error("Failed to load lessons", "path", opts.path, "error", err)
		return 1
	}
	logger.Info("Loaded lessons", "path", opts.path, "count", len(requests))

	evaluate := localEvaluator
	if opts.mode == modeWorkflow {
		c, err := client.Dial(client.Options{
			HostPort:  opts.address,
			Namespace: opts.namespace,
			Logger:    sdklog.NewStructuredLogger(logger),
		})
		if err != nil {
			logger.Error("Unable to create Temporal client", "error", err)
			return 1
		}
		defer c.Close()
		evaluate = workflowEvaluator(c, opts.taskQueue)
	}

	err = process(context.Background(), requests, evaluate, opts, stdout, logger)
	switch {
	case errors.Is(err, errMismatch):
		logger.Error("Verification failed", "error", err)
		return 1
	case err != nil:
		logger.Error("Failed to process lessons", "error", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("appearance", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := &options{}
	fs.StringVar(&opts.path, "path", "", "Path to HCL file or directory (required)")
	fs.StringVar(&opts.mode, "mode", modeLocal, "Evaluation mode: 'local' or 'workflow'")
	fs.StringVar(&opts.address, "address", "localhost:7233", "Address of Temporal server")
	fs.StringVar(&opts.namespace, "namespace", "default", "Temporal namespace")
	fs.StringVar(&opts.taskQueue, "task-queue", temporal.DefaultTaskQueue, "Temporal task queue")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.json, "json", false, "Display results as JSON")
	fs.BoolVar(&opts.verify, "verify", false, "Exit non-zero when a result differs from the lesson's answer")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.path == "" {
		fmt.Fprintln(output, "path parameter is required")
		fs.Usage()
		return nil, errors.New("missing -path")
	}
	if opts.mode != modeLocal && opts.mode != modeWorkflow {
		fmt.Fprintf(output, "mode must be either '%s' or '%s'\n", modeLocal, modeWorkflow)
		return nil, fmt.Errorf("unknown mode %q", opts.mode)
	}
	return opts, nil
}

func localEvaluator(_ context.Context, request temporal.AppearanceRequest) (*temporal.AppearanceResult, error) {
	return temporal.Evaluate(request, time.Now())
}

func workflowEvaluator(c client.Client, taskQueue string) evaluator {
	return func(ctx context.Context, request temporal.AppearanceRequest) (*temporal.AppearanceResult, error) {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        temporal.GenerateAppearanceWorkflowID(request.LessonID),
			TaskQueue: taskQueue,
		}, temporal.AppearanceWorkflow, request)
		if err != nil {
			return nil, fmt.Errorf("failed to execute appearance workflow: %w", err)
		}

		var result *temporal.AppearanceResult
		if err := run.Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("failed to get appearance result: %w", err)
		}
		return result, nil
	}
}

// process evaluates every lesson and prints the results. Lessons that fail are
// reported and skipped; the first failure is returned after all lessons ran.
func process(ctx context.Context, requests []temporal.AppearanceRequest, evaluate evaluator, opts *options, out io.Writer, logger *slog.Logger) error {
	var (
		results    []*temporal.AppearanceResult
		firstErr   error
		mismatched []string
	)

	for _, request := range requests {
		result, err := evaluate(ctx, request)
		if err != nil {
			logger.Error("Failed to evaluate lesson", "lessonID", request.LessonID, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("lesson %q: %w", request.LessonID, err)
			}
			continue
		}
		logger.Debug("Evaluated lesson", "lessonID", result.LessonID, "seconds", result.Seconds)

		if result.Matched != nil && !*result.Matched {
			mismatched = append(mismatched, result.LessonID)
		}
		results = append(results, result)
	}

	if err := displayResults(out, results, opts.json); err != nil {
		return err
	}

	if firstErr != nil {
		return firstErr
	}
	if opts.verify && len(mismatched) > 0 {
		return fmt.Errorf("%w: %v", errMismatch, mismatched)
	}
	return nil
}

// displayResults shows the results in human-readable or JSON format
func displayResults(out io.Writer, results []*temporal.AppearanceResult, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		return nil
	}

	for _, result := range results {
		line := fmt.Sprintf("lesson %s: %d seconds", result.LessonID, result.Seconds)
		if result.Answer != nil {
			status := "ok"
			if result.Matched != nil && !*result.Matched {
				status = "MISMATCH"
			}
			line += fmt.Sprintf(" (answer %d, %s)", *result.Answer, status)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
