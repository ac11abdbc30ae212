package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/quote"
)

const reservePrefix = "reserves:"

// DefaultReserveTTL keeps cached reserves fresh enough that quotes built
// from them stay executable
const DefaultReserveTTL = 2 * time.Second

type inflight struct {
	done chan struct{}
	data json.RawMessage
	err  error
}

// CachedReserveFetcher wraps a ledger-read collaborator with a short-TTL
// Redis cache and in-process request coalescing: concurrent misses on the
// same resource share one upstream fetch instead of stampeding the node.
// Cache failures fall through to the upstream fetch.
type CachedReserveFetcher struct {
	inner  quote.ReserveFetcher
	client redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger

	mu       sync.Mutex
	inflight map[string]*inflight
}

func NewCachedReserveFetcher(inner quote.ReserveFetcher, client redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *CachedReserveFetcher {
	if ttl <= 0 {
		ttl = DefaultReserveTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedReserveFetcher{
		inner:    inner,
		client:   client,
		ttl:      ttl,
		logger:   logger,
		inflight: make(map[string]*inflight),
	}
}

func (c *CachedReserveFetcher) GetResource(ctx context.Context, account, resourceType string) (json.RawMessage, error) {
	key := reservePrefix + account + ":" + resourceType

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		return json.RawMessage(val), nil
	} else if err != redis.Nil {
		c.logger.WithError(err).Debug("reserve cache read failed")
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.data, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflight{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.data, call.err = c.inner.GetResource(ctx, account, resourceType)
	close(call.done)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	if call.err == nil {
		if err := c.client.Set(ctx, key, []byte(call.data), c.ttl).Err(); err != nil {
			c.logger.WithError(err).Debug("reserve cache write failed")
		}
	}

	return call.data, call.err
}
