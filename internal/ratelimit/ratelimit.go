package ratelimit

import (
	"fmt"
	"strings"
	"time"
	"vigil/internal/cache"
)

// Limiter is a fixed-window counter over the shared cache. The window
// is anchored at the first attempt, so no more than `limit` attempts
// are admitted in any window-sized span following it. Counting is
// atomic per key so concurrent requests cannot bypass the limit.
type Limiter struct {
	Cache  cache.Cache
	Prefix string
}

func (l Limiter) key(parts ...string) string {
	segments := append([]string{l.Prefix}, parts...)
	return strings.Join(segments, ":")
}

// IsLimited counts one attempt against the given key and reports
// whether the caller has exceeded `limit` attempts within `window`.
func (l Limiter) IsLimited(key string, limit int64, window time.Duration) (bool, error) {
	count, err := l.Cache.Increment(l.key(key), window)
	if err != nil {
		return false, fmt.Errorf("failed to count attempt for key[%s]: %w", key, err)
	}
	return count > limit, nil
}
