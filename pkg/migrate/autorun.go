package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at startup, but only in dev
// with the auto-migrate flag on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}

	src := Embedded()
	if err := src.Run(ctx, sqlDB, "up"); err != nil {
		return err
	}
	version, err := src.Version(ctx, sqlDB)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"schema_version": version, "source": src.String()}), "migrate.autorun.done")
	return nil
}
