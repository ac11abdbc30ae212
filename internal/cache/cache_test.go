package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DucLoc1999/Dexonic-Trading/internal/models"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   2, // Use different DB for cache tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		_ = client.FlushDB(cctx).Err()
		_ = client.Close()
	})

	return client
}

func sampleTrade(hash string) *models.TradeRecord {
	return &models.TradeRecord{
		Hash:      hash,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Pair:      "APT/USDC",
		TokenIn:   "0x1::aptos_coin::AptosCoin",
		TokenOut:  "0xf22::asset::USDC",
		AmountIn:  100_000_000,
		AmountOut: 2_500_000,
		Venue:     "Liquidswap",
		Sender:    "0xsender",
	}
}

func TestRedisCache_RecentTrades(t *testing.T) {
	c := NewRedisCacheFromClient(setupTestRedis(t), nil)
	ctx := context.Background()

	require.NoError(t, c.AddRecentTrade(ctx, sampleTrade("0x1")))
	require.NoError(t, c.AddRecentTrade(ctx, sampleTrade("0x2")))
	require.NoError(t, c.AddRecentTrade(ctx, sampleTrade("0x3")))

	trades, err := c.GetRecentTrades(ctx, 2)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Most recent first
	assert.Equal(t, "0x3", trades[0].Hash)
	assert.Equal(t, "0x2", trades[1].Hash)
	assert.Equal(t, uint64(100_000_000), trades[0].AmountIn)
}

func TestRedisCache_LimitClamped(t *testing.T) {
	c := NewRedisCacheFromClient(setupTestRedis(t), nil)
	ctx := context.Background()

	require.NoError(t, c.AddRecentTrade(ctx, sampleTrade("0x1")))

	trades, err := c.GetRecentTrades(ctx, -5)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

// countingFetcher tracks how many upstream reads each resource costs
type countingFetcher struct {
	calls atomic.Int64
	delay time.Duration
	data  json.RawMessage
}

func (f *countingFetcher) GetResource(ctx context.Context, _, _ string) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.data, nil
}

func TestCachedReserveFetcher_CacheHit(t *testing.T) {
	client := setupTestRedis(t)
	inner := &countingFetcher{data: json.RawMessage(`{"reserve_x":"5000","reserve_y":"9000"}`)}
	f := NewCachedReserveFetcher(inner, client, time.Minute, nil)

	ctx := context.Background()

	first, err := f.GetResource(ctx, "0xpool", "0xabc::swap::Pool<A,B>")
	require.NoError(t, err)

	second, err := f.GetResource(ctx, "0xpool", "0xabc::swap::Pool<A,B>")
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedReserveFetcher_CoalescesConcurrentMisses(t *testing.T) {
	client := setupTestRedis(t)
	inner := &countingFetcher{
		data:  json.RawMessage(`{"reserve_x":"5000","reserve_y":"9000"}`),
		delay: 50 * time.Millisecond,
	}
	f := NewCachedReserveFetcher(inner, client, time.Minute, nil)

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := f.GetResource(ctx, "0xpool", "0xabc::swap::Pool<A,B>")
			assert.NoError(t, err)
			assert.NotEmpty(t, data)
		}()
	}
	wg.Wait()

	// All ten requests share one upstream fetch
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedReserveFetcher_DistinctKeysNotShared(t *testing.T) {
	client := setupTestRedis(t)
	inner := &countingFetcher{data: json.RawMessage(`{"reserve_x":"1","reserve_y":"2"}`)}
	f := NewCachedReserveFetcher(inner, client, time.Minute, nil)

	ctx := context.Background()

	_, err := f.GetResource(ctx, "0xpool", "0xabc::swap::Pool<A,B>")
	require.NoError(t, err)
	_, err = f.GetResource(ctx, "0xpool", "0xabc::swap::Pool<B,A>")
	require.NoError(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
}
