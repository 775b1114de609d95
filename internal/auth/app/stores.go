package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	goredis "github.com/redis/go-redis/v9"
)

// initRefreshStore opens the configured refresh token backend. sqlite gets
// its migrations applied; redis must answer a ping before startup continues.
func (app *Application) initRefreshStore(ctx context.Context) error {
	switch app.cfg.RefreshStore {
	case RefreshStoreSQLite:
		host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(host)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
		app.refreshTokens = db

	case RefreshStoreRedis:
		client := goredis.NewClient(&goredis.Options{Addr: app.cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("redis ping %s: %w", app.cfg.RedisAddr, err)
		}
		app.logger.Info("connected to redis", "addr", app.cfg.RedisAddr, "prefix", app.cfg.RedisPrefix)
		app.refreshTokens = redis.New(client, app.cfg.RedisPrefix)

	default:
		app.refreshTokens = memory.NewRefreshTokenStore(memory.WithLogger(app.logger))
	}
	return nil
}
