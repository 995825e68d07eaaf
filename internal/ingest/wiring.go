package ingest

import (
	"strconv"

	"sportsync/ingestion/internal/cache"
	"sportsync/ingestion/internal/client"
	"sportsync/ingestion/internal/config"
	"sportsync/ingestion/internal/repository"
)

// DatabaseConfig is the store connection described by cfg.
func DatabaseConfig(cfg *config.Config) repository.Config {
	return repository.Config{
		Host:     cfg.DBHost,
		Port:     strconv.Itoa(cfg.DBPort),
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// CacheConfig is the Redis connection described by cfg.
func CacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewFetcher builds the shared rate limited client from cfg.
func NewFetcher(cfg *config.Config) *client.Client {
	return client.NewClient(client.Options{
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.APIRateLimit,
		Burst:             cfg.APIBurstLimit,
	})
}

// NewPipeline wires a pipeline for the provider selected in cfg. cache may
// be nil.
func NewPipeline(cfg *config.Config, fetcher client.Fetcher, store Store, cache Cache) (*Pipeline, error) {
	adapter, err := NewAdapter(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Fetcher:     fetcher,
		Adapter:     adapter,
		Store:       store,
		Cache:       cache,
		Concurrency: cfg.FanOutConcurrency,
		BatchSize:   cfg.UpsertBatchSize,
		TeamsTTL:    cfg.CacheTTLTeams,
	}, nil
}
