package cmd

import (
	"os"

	"github.com/chxlky/wekan-sync/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir string
	logFile   string
)

var rootCmd = &cobra.Command{
	Use:   "wekan-sync",
	Short: "Synchronize Wekan boards into the reporting database",
	Long: `wekan-sync copies boards, cards, comments and assignees from a Wekan
instance into a local database. Only cards changed since the previous run
are fetched again. Without a subcommand a single sync is run.`,
	SilenceUsage:      true,
	PersistentPreRun:  setupLogger,
	PersistentPostRun: flushLogger,
	RunE:              runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.toml, .env and .env.shared")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "log.log", "rotating log file, empty to disable")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogger(_ *cobra.Command, _ []string) {
	zap.ReplaceGlobals(logging.New(os.Getenv("LOG_LEVEL"), logFile))
}

func flushLogger(_ *cobra.Command, _ []string) {
	_ = zap.L().Sync()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("Program aborted", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
