package jobs

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artem13815/careerassist/pkg/logging"
)

// KV is the subset of the redis client used by Cache.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cache wraps a Searcher and SalaryEstimator and memoizes their answers in redis.
// Cache failures never fail a lookup; the provider is queried instead.
type Cache struct {
	kv       KV
	ttl      time.Duration
	searcher Searcher
	salaries SalaryEstimator
}

func NewCache(kv KV, ttl time.Duration, searcher Searcher, salaries SalaryEstimator) *Cache {
	return &Cache{kv: kv, ttl: ttl, searcher: searcher, salaries: salaries}
}

func (c *Cache) SearchJobs(ctx context.Context, query, location string, limit int) ([]Listing, error) {
	key := cacheKey("jobs", query, location, strconv.Itoa(limit))
	var cached []Listing
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	out, err := c.searcher.SearchJobs(ctx, query, location, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cache) EstimateSalary(ctx context.Context, jobTitle, location string) (*SalaryEstimate, error) {
	key := cacheKey("salary", jobTitle, location)
	var cached *SalaryEstimate
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	out, err := c.salaries.EstimateSalary(ctx, jobTitle, location)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.kv.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.From(ctx).Warn("provider cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logging.From(ctx).Warn("provider cache entry is corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logging.From(ctx).Warn("provider cache write failed", "key", key, "error", err)
	}
}

func cacheKey(kind string, parts ...string) string {
	h := sha1.Sum([]byte(strings.ToLower(strings.Join(parts, "\x00"))))
	return "careerassist:" + kind + ":" + hex.EncodeToString(h[:])
}
