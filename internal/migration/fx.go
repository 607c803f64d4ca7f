package migration

import (
	"github.com/smallbiznis/churnscope/internal/config"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&storedomain.ChurnScore{},
				&storedomain.ChurnScoreStaging{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
