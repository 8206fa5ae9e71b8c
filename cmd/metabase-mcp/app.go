package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/config"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/logging"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/metabase"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/retrieve"
	"github.com/rs/zerolog"
)

// app wires the configured components together.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	redis     *redis.Client
	client    *metabase.Client
	retriever *retrieve.Retriever
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
	})

	a := &app{
		cfg:    cfg,
		logger: logging.NewLogger("metabase-mcp"),
	}

	if cfg.Cache.Enabled {
		rdb, err := newRedis(cfg.Cache)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = rdb
		a.logger.Info().Str("redis", cfg.Cache.RedisURL).Dur("ttl", cfg.Cache.TTL).Msg("Connected to Redis")
	}

	mbCfg := metabase.DefaultConfig(cfg.Metabase.URL, cfg.Metabase.APIKey)
	mbCfg.UserAgent = cfg.Metabase.UserAgent
	mbCfg.Timeout = cfg.Metabase.Timeout
	mbCfg.RateLimit = cfg.Metabase.RateLimit
	mbCfg.RateBurst = cfg.Metabase.RateBurst
	mbCfg.MaxRetries = cfg.Metabase.MaxRetries
	mbCfg.InitialBackoff = cfg.Metabase.InitialBackoff
	mbCfg.Redis = a.redis
	mbCfg.CacheTTL = cfg.Cache.TTL

	client, err := metabase.New(mbCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create metabase client: %w", err)
	}
	a.client = client

	retrieveLogger := logging.NewLogger("retrieve")
	a.retriever = retrieve.New(client, &retrieveLogger)

	return a, nil
}

// newRedis accepts either host:port or a redis:// URL.
func newRedis(cfg config.CacheConfig) (*redis.Client, error) {
	if strings.Contains(cfg.RedisURL, "://") {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if cfg.RedisDB != 0 {
			opts.DB = cfg.RedisDB
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisURL, DB: cfg.RedisDB}), nil
}

func (a *app) Close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
