package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/skillmapper-backend/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			gdb, err := app.OpenDB(log, cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			log.Info("Migrations applied", "driver", cfg.DB.Driver)
			return nil
		},
	}
}
