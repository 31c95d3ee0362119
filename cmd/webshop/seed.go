package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/webshop/internal/config"
	"github.com/Skotchmaster/webshop/internal/db"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/seed"
)

func seedCmd(load func() (*config.Config, error)) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and products from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)
			ctx := logging.IntoContext(cmd.Context(), logger)

			catalog, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			gdb, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			if err := db.Migrate(ctx, gdb); err != nil {
				return err
			}

			res, err := seed.Apply(ctx, repo.New(gdb), catalog)
			if err != nil {
				return err
			}
			if cfg.ESURL != "" {
				reindex(ctx, cfg, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the catalog YAML file")
	return cmd
}

func reindex(ctx context.Context, cfg *config.Config, res *seed.Result) {
	l := logging.FromContext(ctx)
	ix, err := openIndex(ctx, cfg)
	if err != nil {
		l.Warn("search index unavailable, seeded products not indexed", "error", err)
		return
	}
	for _, p := range res.Created {
		if err := ix.IndexProduct(ctx, p); err != nil {
			l.Warn("index product failed", "product_id", p.ID, "error", err)
		}
	}
}
