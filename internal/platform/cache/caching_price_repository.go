// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_dashboard/internal/feature/prices/domain/entity"
	"stock_dashboard/internal/feature/prices/usecase"
)

// CachingPriceRepository decorates a PriceRepository with Redis caching.
// Only raw price rows are cached; derived chart values are always recomputed.
type CachingPriceRepository struct {
	inner     usecase.PriceRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.PriceRepository = (*CachingPriceRepository)(nil)

// NewCachingPriceRepository decorates a PriceRepository with Redis caching.
// If ttl is 0, entries expire at the next market close. If namespace is empty, it uses "prices".
// A nil rdb bypasses the cache entirely.
func NewCachingPriceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PriceRepository, namespace string) *CachingPriceRepository {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// UpsertBatch inserts or updates bars and invalidates the cached windows of every affected code.
func (c *CachingPriceRepository) UpsertBatch(ctx context.Context, bars []entity.PriceBar) error {
	if err := c.inner.UpsertBatch(ctx, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, b := range bars {
		prefix := c.cacheKeyPrefix(b.Code)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		// Best effort: a stale entry expires at the next close anyway
		if err := c.deleteByPattern(ctx, globEscape(prefix)+"*"); err != nil {
			slog.Warn("failed to invalidate price cache", "prefix", prefix, "error", err)
		}
	}
	return nil
}

// FindRecent retrieves bars, checking the cache first then falling back to the database.
func (c *CachingPriceRepository) FindRecent(ctx context.Context, code string, days int) ([]entity.PriceBar, error) {
	if c.rdb == nil {
		return c.inner.FindRecent(ctx, code, days)
	}

	key := c.cacheKey(code, days)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.PriceBar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindRecent(ctx, code, days)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, ttlFor(c.now(), c.ttl)).Err(); err != nil {
			slog.Warn("failed to cache prices", "key", key, "error", err)
		}
	}
	return out, nil
}

func (c *CachingPriceRepository) cacheKey(code string, days int) string {
	return fmt.Sprintf("%s:%s:%d", c.namespace, safe(code), days)
}

func (c *CachingPriceRepository) cacheKeyPrefix(code string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(code))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPriceRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// globEscape quotes the SCAN MATCH metacharacters so a key prefix only matches itself.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
