package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"selcap"
	"selcap/internal/config"
)

var runStandalone bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to the host and announce capital selections",
	Long: `Connect to the configured host, take over single-character selection
changes, and keep running until the host disconnects or the process is
interrupted.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runStandalone, "standalone", false, "read selection events from stdin and speak locally")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if runStandalone {
		cfg.Mode = config.ModeStandalone
	}

	service, err := selcap.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting selection interceptor", "mode", cfg.Mode)
	return service.Run(ctx)
}
