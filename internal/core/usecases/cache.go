package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/samirrijal/crewmap/internal/core/ports"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

const (
	listTTL = 60  // seconds
	getTTL  = 300 // seconds
)

// readThrough returns the cached value under key, or loads, caches and returns it.
// A nil cache or any cache failure falls through to load.
func readThrough[T any](ctx context.Context, cache ports.CacheService, op, key string, ttl int, load func() (T, error)) (T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = cache.Set(ctx, key, data, ttl)
		}
	}
	return v, nil
}

// generation returns the current list generation for prefix. List cache keys
// embed it so that bumping it retires every cached page at once.
func generation(ctx context.Context, cache ports.CacheService, prefix string) string {
	if cache == nil {
		return "0"
	}
	data, err := cache.Get(ctx, prefix+":gen")
	if err != nil || len(data) == 0 {
		return "0"
	}
	return string(data)
}

// invalidate drops the cached record and retires all cached lists for prefix.
func invalidate(ctx context.Context, cache ports.CacheService, prefix, id string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, prefix+":id:"+id); err != nil {
		slog.WarnContext(ctx, "cache delete failed", "prefix", prefix, "id", id, "error", err)
	}
	retireLists(ctx, cache, prefix)
}

// retireLists bumps the list generation for prefix.
func retireLists(ctx context.Context, cache ports.CacheService, prefix string) {
	if cache == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := cache.Set(ctx, prefix+":gen", []byte(gen), 0); err != nil {
		slog.WarnContext(ctx, "cache generation bump failed", "prefix", prefix, "error", err)
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
