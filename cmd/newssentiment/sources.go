package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Abigiya-M/News-Sentiment/internal/datasource"
	"github.com/Abigiya-M/News-Sentiment/internal/publish"
	"github.com/Abigiya-M/News-Sentiment/internal/store"
)

// newPriceSource builds the configured price source. The returned cleanup
// releases any cache connection.
func newPriceSource(ctx context.Context, source, pricesDir string) (datasource.PriceSource, func(), error) {
	noop := func() {}

	switch source {
	case "csv":
		if pricesDir == "" {
			pricesDir = cfg.Data.PricesDir
		}
		return datasource.NewCSVPrices(pricesDir), noop, nil
	case "yahoo":
	default:
		return nil, noop, fmt.Errorf("unknown price source %q (want yahoo or csv)", source)
	}

	opts := []datasource.YahooOption{
		datasource.WithBaseURL(cfg.Yahoo.BaseURL),
		datasource.WithRateLimit(cfg.Yahoo.RequestsPerSec),
		datasource.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Yahoo.TimeoutSec) * time.Second}),
		datasource.WithLogger(logger),
	}

	cleanup := noop
	ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
	switch cfg.Cache.Backend {
	case "memory":
		opts = append(opts, datasource.WithCache(datasource.NewMemoryCache(), ttl))
	case "redis":
		rc, err := datasource.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unavailable, using in-memory cache")
			opts = append(opts, datasource.WithCache(datasource.NewMemoryCache(), ttl))
			break
		}
		opts = append(opts, datasource.WithCache(rc, ttl))
		cleanup = func() { rc.Close() }
	}

	return datasource.NewYahoo(opts...), cleanup, nil
}

func openStore() (*store.DB, error) {
	db, err := store.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newProducer() (*publish.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		return nil, fmt.Errorf("kafka.brokers and kafka.topic must be set to publish")
	}
	return publish.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger), nil
}

func feeds() []datasource.Feed {
	out := make([]datasource.Feed, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		out[i] = datasource.Feed{Name: f.Name, URL: f.URL}
	}
	return out
}
