package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/leowmjw/go-temporal-appearance/pkg/config"
	"github.com/leowmjw/go-temporal-appearance/pkg/http"
	"github.com/leowmjw/go-temporal-appearance/pkg/metrics"
	"github.com/leowmjw/go-temporal-appearance/pkg/store"
	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Starting Appearance Service",
		"http_addr", cfg.HTTPAddr,
		"temporal_addr", cfg.TemporalAddr,
		"namespace", cfg.Namespace,
		"task_queue", cfg.TaskQueue,
		"db_path", cfg.DBPath,
	)

	// Create Temporal client
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddr,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	// Results live in SQLite when a path is configured, in memory otherwise
	var resultStore temporal.ResultStore
	if cfg.DBPath != "" {
		sqliteStore, err := store.New(cfg.DBPath)
		if err != nil {
			logger.Error("Failed to open result store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		resultStore = sqliteStore
	} else {
		resultStore = temporal.NewMemoryResultStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	activities := temporal.NewActivitiesImpl(logger, resultStore, m)

	// Create and start Temporal worker
	w := worker.New(temporalClient, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflow(temporal.AppearanceWorkflow)
	w.RegisterWorkflow(temporal.BatchAppearanceWorkflow)
	activities.Register(w)

	go func() {
		logger.Info("Starting Temporal worker", "task_queue", cfg.TaskQueue)
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Error("Temporal worker failed", "error", err)
			os.Exit(1)
		}
	}()

	server := http.NewServer(logger, temporalClient, resultStore, m, cfg.HTTPAddr, cfg.TaskQueue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(ctx); err != nil {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal, stopping services...")

	cancel()

	logger.Info("Appearance Service stopped")
}

// loadConfig reads the optional TOML file named by -config, then applies only
// the flags that were set explicitly on the command line.
func loadConfig(args []string, output io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(output)

	defaults := config.Default()
	var (
		configPath   = fs.String("config", "", "Path to a TOML configuration file")
		httpAddr     = fs.String("http-addr", defaults.HTTPAddr, "HTTP server address")
		temporalAddr = fs.String("temporal-addr", defaults.TemporalAddr, "Temporal server address")
		namespace    = fs.String("namespace", defaults.Namespace, "Temporal namespace")
		taskQueue    = fs.String("task-queue", defaults.TaskQueue, "Temporal task queue")
		logLevel     = fs.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
		dbPath       = fs.String("db-path", defaults.DBPath, "SQLite file for results; empty keeps them in memory")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTPAddr = *httpAddr
		case "temporal-addr":
			cfg.TemporalAddr = *temporalAddr
		case "namespace":
			cfg.Namespace = *namespace
		case "task-queue":
			cfg.TaskQueue = *taskQueue
		case "log-level":
			cfg.LogLevel = *logLevel
		case "db-path":
			cfg.DBPath = *dbPath
		}
	})

	if _, err := config.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
