package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that keep payment state consistent with the gateway.`,
}

// Reconcile worker command
var reconcileWorkerCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Settle payments abandoned at checkout",
	Long: `Periodically settles PENDING payments whose donor never returned from checkout.
The outcome is read from the payment gateway.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReconcileWorker()
	},
}

var (
	reconcileInterval  time.Duration
	reconcileOlderThan time.Duration
	reconcileBatchSize int
	reconcileOnce      bool
)

func startReconcileWorker() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting reconcile worker",
		"interval", reconcileInterval,
		"older_than", reconcileOlderThan,
		"batch_size", reconcileBatchSize)

	runOnce := func() {
		settled, err := deps.Donations.ReconcileStale(ctx, reconcileOlderThan, reconcileBatchSize)
		if err != nil {
			logger.Error("reconcile run failed", "settled", settled, "error", err)
			return
		}
		logger.Info("reconcile run finished", "settled", settled)
	}

	runOnce()
	if !reconcileOnce {
		ticker := time.NewTicker(reconcileInterval)
		defer ticker.Stop()

	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				runOnce()
			}
		}
		logger.Info("received signal, shutting down reconcile worker")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deps.Close(shutdownCtx)
	logger.Info("reconcile worker stopped")
}

func init() {
	reconcileWorkerCmd.Flags().DurationVar(&reconcileInterval, "interval", 5*time.Minute, "time between reconcile runs")
	reconcileWorkerCmd.Flags().DurationVar(&reconcileOlderThan, "older-than", 30*time.Minute, "only settle payments pending for longer than this")
	reconcileWorkerCmd.Flags().IntVar(&reconcileBatchSize, "batch-size", 100, "maximum payments settled per run")
	reconcileWorkerCmd.Flags().BoolVar(&reconcileOnce, "once", false, "run a single pass and exit")

	workerCmd.AddCommand(reconcileWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
