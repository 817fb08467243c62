package database

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/trade-journal/internal/config"
)

// Initialize builds the process-wide provider. With auto_migrate enabled the
// embedded migrations run once when the pool is first opened.
func Initialize(cfg *config.Config, logger *logrus.Logger) *Provider {
	var onOpen func(ctx context.Context, db *DB) error
	if cfg.Database.AutoMigrate {
		onOpen = func(ctx context.Context, db *DB) error {
			applied, err := RunMigrations(ctx, db)
			if err != nil {
				return err
			}
			if len(applied) > 0 {
				logger.WithField("migrations", applied).Info("Applied database migrations")
			}
			return nil
		}
	}
	return NewProvider(&cfg.Database, logger, onOpen)
}
