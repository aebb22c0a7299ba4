package app

import (
	"context"
	"database/sql"

	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure the API needs and mounts every module
// on router. The returned cleanup closes those connections.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, sqlDB, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := Migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("schema migrated")
	}

	// Redis is optional. Without it the HR dashboard is computed on every
	// call and payroll generation skips Idempotency-Key replay.
	var rdb redis.Cmdable
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = connection.ConnectRedisWithRetry(cfg.Redis)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		rdb = redisClient
		logger.Info("redis connection established")
	} else {
		logger.Warn("redis disabled, REDIS_ADDR is empty")
	}

	modules, err := registerModules(router, cfg, sqlDB, gormDB, rdb)
	if err != nil {
		closeAll(sqlDB, redisClient)
		return nil, err
	}

	if err := ensureAdmin(ctx, modules, cfg.Bootstrap, logger); err != nil {
		closeAll(sqlDB, redisClient)
		return nil, err
	}

	return func() { closeAll(sqlDB, redisClient) }, nil
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

func ensureAdmin(ctx context.Context, m *modules, cfg config.BootstrapConfig, logger *zap.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	created, err := m.users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if !created {
		logger.Debug("bootstrap admin already present", zap.String("username", cfg.AdminUsername))
	}
	return nil
}

func closeAll(sqlDB *sql.DB, redisClient *redis.Client) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
