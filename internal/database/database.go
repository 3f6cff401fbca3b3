package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
)

type Database struct {
	PG     *pgxpool.Pool
	Redis  *RedisClients
	logger *logrus.Logger
}

type RedisClients struct {
	Hot  *redis.Client
	Warm *redis.Client
}

func New(cfg *config.Config, logger *logrus.Logger) (*Database, error) {
	db := &Database{logger: logger}

	if err := db.initPostgreSQL(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := db.initRedis(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return db, nil
}

func (db *Database) initPostgreSQL(cfg *config.Config) error {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolConfig.MaxConnLifetime = cfg.Database.MaxLifetime
	poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.PG = pool
	db.logger.Info("PostgreSQL connection established")
	return nil
}

func (db *Database) initRedis(cfg *config.Config) error {
	clients := &RedisClients{}

	// Redis is an optional accelerator; an unset URL leaves that client nil
	// and callers compute through.
	if cfg.Redis.Hot.URL != "" {
		client, err := newRedisClient(cfg.Redis.Hot)
		if err != nil {
			return fmt.Errorf("hot redis: %w", err)
		}
		clients.Hot = client
		db.logger.Info("Hot Redis connection established")
	}
	if cfg.Redis.Warm.URL != "" {
		client, err := newRedisClient(cfg.Redis.Warm)
		if err != nil {
			return fmt.Errorf("warm redis: %w", err)
		}
		clients.Warm = client
		db.logger.Info("Warm Redis connection established")
	}

	db.Redis = clients
	return nil
}

func newRedisClient(cfg config.RedisInstanceConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.Timeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisHot returns the hot-tier client or nil when Redis is not configured.
func (db *Database) RedisHot() *redis.Client {
	if db == nil || db.Redis == nil {
		return nil
	}
	return db.Redis.Hot
}

// RedisWarm returns the warm-tier client or nil when Redis is not configured.
func (db *Database) RedisWarm() *redis.Client {
	if db == nil || db.Redis == nil {
		return nil
	}
	return db.Redis.Warm
}

func (db *Database) Close() error {
	if db.PG != nil {
		db.PG.Close()
	}
	if db.Redis != nil {
		if db.Redis.Hot != nil {
			if err := db.Redis.Hot.Close(); err != nil {
				return err
			}
		}
		if db.Redis.Warm != nil {
			if err := db.Redis.Warm.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
