package main

import (
	"fmt"
	"os"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	infra  *app.Infra
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Background jobs for go-leave",
	Long: `Runs the leave expiration sweeper and the outbox publisher.

  sweep  cancels SUBMITTED and APPROVED_MANAGER requests idle past
         LEAVE_EXPIRATION_THRESHOLD, once, and prints what it did.
  run    sweeps every SWEEP_INTERVAL and publishes pending outbox events
         to Kafka until interrupted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = bootstrap.NewLogger(cfg.LogLevel, cfg.IsProduction())
		if err != nil {
			return err
		}
		apperror.Init()

		infra, err = app.Connect(cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if infra != nil {
			infra.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.AddCommand(newSweepCmd(), newRunCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
