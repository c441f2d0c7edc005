package challenges

import (
	"bytes"
	"errors"
	"testing"
	"time"
	"vigil/internal/cache"
)

func TestStoreRoundTrip(t *testing.T) {
	store := Store{Cache: cache.NewMemory(), Prefix: "webauthn-register"}
	state := []byte(`{"challenge":"abc"}`)
	if err := store.Put("session-1", state); err != nil {
		t.Fatalf("failed to put state: %s", err)
	}
	got, err := store.Take("session-1")
	if err != nil {
		t.Fatalf("failed to take state: %s", err)
	}
	if !bytes.Equal(got, state) {
		t.Errorf("state mismatch: got %s", string(got))
	}
}

func TestStoreTakeConsumes(t *testing.T) {
	store := Store{Cache: cache.NewMemory(), Prefix: "webauthn-register"}
	store.Put("session-1", []byte("state"))
	if _, err := store.Take("session-1"); err != nil {
		t.Fatalf("first take failed: %s", err)
	}
	if _, err := store.Take("session-1"); !errors.Is(err, ErrorNoChallenge) {
		t.Errorf("expected ErrorNoChallenge on second take, got %v", err)
	}
}

func TestStoreMissingKey(t *testing.T) {
	store := Store{Cache: cache.NewMemory(), Prefix: "webauthn-register"}
	if _, err := store.Take("never-issued"); !errors.Is(err, ErrorNoChallenge) {
		t.Errorf("expected ErrorNoChallenge, got %v", err)
	}
}

func TestStoreExpiry(t *testing.T) {
	store := Store{Cache: cache.NewMemory(), Prefix: "webauthn-register", Ttl: 10 * time.Millisecond}
	store.Put("session-1", []byte("state"))
	time.Sleep(20 * time.Millisecond)
	if _, err := store.Take("session-1"); !errors.Is(err, ErrorNoChallenge) {
		t.Errorf("expected expired state to be gone, got %v", err)
	}
}
