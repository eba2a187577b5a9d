package main

import (
	"github.com/spf13/cobra"

	"github.com/joestump/affilinks/internal/config"
	"github.com/joestump/affilinks/internal/db"
	"github.com/joestump/affilinks/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			initLogger(cfg)
			defer logger.Sync()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			logger.Infow("migrations complete", "driver", cfg.DB.Driver)
			return nil
		},
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg.Log.Mode, logger.Options{
		Dir:        cfg.Log.Dir,
		Filename:   cfg.Log.Filename,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}
