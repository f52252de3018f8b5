package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"MarketLens/internal/model"
)

const redisKeyPrefix = "marketlens:history"

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache shares provider responses between server instances.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	log.Printf("[INFO] redis cache connected: %s (ttl %s)", cfg.Addr, ttl)
	return &RedisCache{client: client, ttl: ttl}, nil
}

func redisKey(symbol string, period model.Period) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, symbol, period)
}

func (r *RedisCache) Get(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	data, err := r.client.Get(ctx, redisKey(symbol, period)).Bytes()
	if err == goredis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("decode cached bars: %w", err)
	}
	return bars, nil
}

func (r *RedisCache) Put(ctx context.Context, symbol string, period model.Period, bars []model.OHLCV) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(symbol, period), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	log.Println("[INFO] closing redis cache")
	return r.client.Close()
}
