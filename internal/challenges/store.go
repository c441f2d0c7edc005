// Package challenges keeps short-lived server-side ceremony state
// (e.g. WebAuthn registration challenges) in an explicit, expiring,
// keyed store instead of ambient session fields.
package challenges

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"vigil/internal/cache"
)

var ErrorNoChallenge = errors.New("no_challenge_state")

const DefaultTtl = 5 * time.Minute

type Store struct {
	Cache  cache.Cache
	Prefix string
	Ttl    time.Duration
}

func (s Store) key(key string) string {
	return strings.Join([]string{s.Prefix, key}, ":")
}

func (s Store) ttl() time.Duration {
	if s.Ttl > 0 {
		return s.Ttl
	}
	return DefaultTtl
}

// Put stores ceremony state under the given key, replacing any state
// issued earlier for the same key.
func (s Store) Put(key string, state []byte) error {
	encoded := base64.StdEncoding.EncodeToString(state)
	if err := s.Cache.Set(s.key(key), encoded, s.ttl()); err != nil {
		return fmt.Errorf("failed to store challenge state: %w", err)
	}
	return nil
}

// Take retrieves and consumes the ceremony state for the given key.
// Returns ErrorNoChallenge when no state exists or it has expired.
func (s Store) Take(key string) ([]byte, error) {
	encoded, err := s.Cache.Get(s.key(key))
	if err != nil {
		if errors.Is(err, cache.ErrorNotFound) {
			return nil, ErrorNoChallenge
		}
		return nil, fmt.Errorf("failed to retrieve challenge state: %w", err)
	}
	state, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode challenge state: %w", err)
	}
	if err := s.Cache.Del(s.key(key)); err != nil {
		return nil, fmt.Errorf("failed to consume challenge state: %w", err)
	}
	return state, nil
}
