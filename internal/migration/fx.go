package migration

import (
	"github.com/erplora/analytics/internal/config"
	settingsdomain "github.com/erplora/analytics/internal/settings/domain"
	snapshotdomain "github.com/erplora/analytics/internal/snapshot/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL migrations target postgres. Dev databases
			// (sqlite, mysql) get the schema from the models directly.
			return conn.AutoMigrate(
				&settingsdomain.AnalyticsSettings{},
				&settingsdomain.SavedReport{},
				&snapshotdomain.ReportSnapshot{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
