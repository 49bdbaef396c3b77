package app

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"mindweek/internal/config"
	"mindweek/internal/db"
	"mindweek/internal/kvstore"
	"mindweek/internal/logger"
)

type Infra struct {
	DB *db.DB
	KV kvstore.Store

	closers []func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	if cfg.DatabaseDSN != "" {
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}

		if err := db.RunMigration(ctx, sqlDB); err != nil {
			return nil, err
		}

		infra.DB = &db.DB{DB: sqlDB}
		infra.closers = append(infra.closers, sqlDB.Close)

		logger.Info("database ready", nil)
	} else if cfg.IdentityBackend == "local" {
		return nil, errors.New("local identity backend requires DATABASE_DSN")
	}

	if cfg.RedisAddr != "" {
		redisKV, err := kvstore.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}

		infra.KV = redisKV
		infra.closers = append(infra.closers, redisKV.Close)

		logger.Info("redis ready", nil)
	} else {
		logger.Warn("no REDIS_ADDR configured, session and theme state will not survive restarts", nil)
		infra.KV = kvstore.NewMemory()
	}

	return infra, nil
}

func (i *Infra) Close() error {
	var firstErr error
	for _, closeFn := range i.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
