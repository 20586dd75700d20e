package cmd

import (
	"fmt"

	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/integrations"
	"github.com/chxlky/wekan-sync/internal/config"
	"github.com/chxlky/wekan-sync/internal/reconcile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization and exit",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	zap.L().Info("Program started")

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zap.L().Error("Error closing database", zap.Error(err))
		}
	}()

	client := integrations.NewWekanClient(cfg.Wekan.BaseURL, cfg.Wekan.Timeout, zap.L())
	if _, err := client.Login(ctx, cfg.Wekan.Username, cfg.Wekan.Password); err != nil {
		return err
	}

	store := database.NewStore(db, cfg.Database.MaxRecordBytes)
	summary, err := reconcile.NewRunner(client, store, cfg.Wekan.AdminUser, cfg.Sync, zap.L()).Run(ctx)
	if err != nil {
		return err
	}

	zap.L().Info(fmt.Sprintf("'%d' cards were added or updated", summary.Saved),
		zap.Int("boards", summary.Boards),
		zap.Int("skipped", summary.Skipped),
	)
	zap.L().Info("Program finished")
	return nil
}
