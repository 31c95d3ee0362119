package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/webshop/internal/config"
	"github.com/Skotchmaster/webshop/internal/db"
	"github.com/Skotchmaster/webshop/internal/logging"
)

func migrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)
			ctx := logging.IntoContext(cmd.Context(), logger)

			gdb, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			if err := db.Migrate(ctx, gdb); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}
