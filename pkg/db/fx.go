package db

import (
	"github.com/smallbiznis/churnscope/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func FromAppConfig(cfg config.Config) Config {
	return Config{
		Type:     cfg.DBType,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

func provideConn(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	return Open(cfg, log.Named("db"))
}

var Module = fx.Module("db",
	fx.Provide(
		FromAppConfig,
		provideConn,
	),
)
