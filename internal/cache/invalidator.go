// Package cache provides the cache-invalidation port. Invalidation is a
// non-blocking notification: a stale entry is acceptable and self-heals on
// the next read-miss or TTL expiry, so correctness never depends on it.
package cache

import "nivesh/internal/logger"

// LogInvalidator records invalidation events in the structured log. A
// deployment with a read cache points this at the cache backend instead.
type LogInvalidator struct{}

// NewLogInvalidator creates a log-backed cache invalidator.
func NewLogInvalidator() *LogInvalidator {
	return &LogInvalidator{}
}

// ClearPattern logs the pattern being invalidated.
func (i *LogInvalidator) ClearPattern(pattern string) {
	logger.Get().Debugw("cache invalidate", "pattern", pattern)
}
