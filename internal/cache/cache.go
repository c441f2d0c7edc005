package cache

import (
	"errors"
	"time"
)

var ErrorNotFound = errors.New("cache_key_not_found")

var instance Cache

// Cache is the key-value surface shared by sessions, one-time codes,
// challenge state and rate-limit counters.
type Cache interface {
	Set(key string, value string, ttl time.Duration) (err error)
	Get(key string) (value string, err error)
	Del(key string) (err error)

	// Increment atomically increments the counter at `key`, applying
	// `ttl` when the counter is created. Returns the value after the
	// increment.
	Increment(key string, ttl time.Duration) (count int64, err error)
}

func Get() Cache {
	return instance
}

// Set replaces the singleton instance; used by service start-up and by
// tests that run against the in-memory implementation.
func Set(c Cache) {
	instance = c
}
