package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fmcut/partitioner/internal/service"
	"github.com/fmcut/partitioner/pkg/config"
	"github.com/fmcut/partitioner/pkg/telemetry"
)

// workerCmd runs the queue-driven worker daemon: it drains queued partition
// jobs from whichever sources are configured (database poll, HTTP submission)
// and runs each job independently to completion.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the queue-driven partition worker daemon",
	Long: `Worker starts a long-lived daemon that polls the configured job
sources for queued partition requests and runs each one to convergence.

Concurrency is at the job-dispatch level only: workers never parallelize
the FM pass loop of an individual job.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	binName := BinName()
	workerCmd.Example = `  # Run the worker against the configured sources
  ` + binName + ` worker -c ./config.yaml`
}

func runWorker(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	svc, err := service.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx)
	if err != nil {
		log.Warn("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn("failed to shut down telemetry: %v", err)
		}
	}()

	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	log.Info("worker started, waiting for jobs...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal %v, shutting down...", sig)
		cancel()
	case <-ctx.Done():
	}

	if err := svc.Stop(); err != nil {
		log.Error("error during shutdown: %v", err)
	}

	log.Info("worker stopped")
	return nil
}
