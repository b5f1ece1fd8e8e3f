package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// CachedRetriever wraps a Retriever with a redis TTL cache. Web searches
// for popular shopping queries repeat often and the upstream is metered, so
// a hit skips the collaborator entirely. Cache failures are absorbed: a
// broken redis degrades to uncached retrieval, never to a failed run.
type CachedRetriever struct {
	inner  Retriever
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRetriever creates a caching wrapper around inner.
func NewCachedRetriever(inner Retriever, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedRetriever{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "retrieval_cache")),
	}
}

// Retrieve implements Retriever.
func (c *CachedRetriever) Retrieve(ctx context.Context, query string, limit int) ([]types.EvidenceItem, error) {
	key := c.cacheKey(query, limit)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var items []types.EvidenceItem
		if err := json.Unmarshal(data, &items); err == nil {
			c.logger.Debug("cache hit", zap.String("key", key))
			return items, nil
		}
	}

	items, err := c.inner.Retrieve(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if data, err := json.Marshal(items); err == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("cache set failed", zap.Error(err))
			}
		}
	}

	return items, nil
}

// Source implements Retriever.
func (c *CachedRetriever) Source() types.EvidenceSource { return c.inner.Source() }

func (c *CachedRetriever) cacheKey(query string, limit int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", c.inner.Source(), query, limit)))
	return "retrieval:" + hex.EncodeToString(h[:16])
}
