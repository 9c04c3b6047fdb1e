package app

import (
	"database/sql"

	"go-leave/internal/config"
	"go-leave/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// Infra holds the shared connections every binary starts from.
type Infra struct {
	Config *config.Config
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

// Connect opens Postgres and, when REDIS_ADDR is set, Redis.
func Connect(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Postgres, connectRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("host", cfg.Postgres.Host))

	infra := &Infra{Config: cfg, GormDB: gormDB, SQLDB: sqlDB, Logger: logger}

	if cfg.RedisAddr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		infra.Redis = rdb
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}
