// Package bootstrap builds the runtime collaborators selected by
// configuration so cmd binaries stay thin.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPostgresPool connects to DATABASE_URL. An empty URL returns nil and
// the caller falls back to in-memory stores.
func BuildPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) (*pgxpool.Pool, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse database url: %w", err)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	logger.Info("postgres pool ready", "max_conns", poolCfg.MaxConns)
	return pool, nil
}

// OpenSQLDB opens a database/sql handle over the pgx stdlib driver for the
// stores built on database/sql.
func OpenSQLDB(databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open sql db: %w", err)
	}
	return db, nil
}

// BuildDeduplicator prefers Redis, then Postgres. Without either, inbound
// message ids are not tracked and nil is returned.
func BuildDeduplicator(cfg *appconfig.Config, redisClient *redis.Client, pool *pgxpool.Pool, logger *logging.Logger) events.Deduplicator {
	if logger == nil {
		logger = logging.Default()
	}
	switch {
	case redisClient != nil:
		logger.Info("webhook dedupe backed by redis", "ttl", cfg.DedupeTTL.String())
		return events.NewRedisProcessedStore(redisClient, cfg.DedupeTTL)
	case pool != nil:
		logger.Info("webhook dedupe backed by postgres", "ttl", cfg.DedupeTTL.String())
		return events.NewProcessedStore(pool, cfg.DedupeTTL)
	default:
		logger.Warn("webhook dedupe disabled; redeliveries will be routed again")
		return nil
	}
}
