// Package cache holds the optional Redis layer: recent-trade history and
// a short-TTL reserve cache. The service runs fine without it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/models"
)

const (
	recentTradesKey = "trades:recent"
	recentTradesMax = 500
)

// RedisCache keeps a capped list of recent trades
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCache(addr string, logger *logrus.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.WithField("addr", addr).Info("connected to Redis")

	return &RedisCache{client: client, logger: logger}, nil
}

// NewRedisCacheFromClient wraps an already-connected client
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// Client exposes the underlying connection for collaborators that share
// it (venue flags, reserve cache)
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) AddRecentTrade(ctx context.Context, trade *models.TradeRecord) error {
	b, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentTradesKey, b)
	pipe.LTrim(ctx, recentTradesKey, 0, recentTradesMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent trade: %w", err)
	}

	return nil
}

func (r *RedisCache) GetRecentTrades(ctx context.Context, limit int64) ([]*models.TradeRecord, error) {
	if limit <= 0 || limit > recentTradesMax {
		limit = recentTradesMax
	}

	vals, err := r.client.LRange(ctx, recentTradesKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent trades: %w", err)
	}

	out := make([]*models.TradeRecord, 0, len(vals))
	for _, v := range vals {
		var t models.TradeRecord
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			r.logger.WithError(err).Debug("skipping malformed trade entry")
			continue
		}
		out = append(out, &t)
	}

	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
