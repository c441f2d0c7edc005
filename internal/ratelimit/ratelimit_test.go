package ratelimit

import (
	"fmt"
	"testing"
	"time"
	"vigil/internal/cache"
)

func TestLimiterAdmitsUpToLimit(t *testing.T) {
	limiter := Limiter{Cache: cache.NewMemory(), Prefix: "test"}
	for i := 0; i < 10; i++ {
		limited, err := limiter.IsLimited("user:totp", 10, time.Hour)
		if err != nil {
			t.Fatalf("attempt %v returned error: %s", i, err)
		}
		if limited {
			t.Errorf("attempt %v was limited, expected it to be admitted", i)
		}
	}
	limited, err := limiter.IsLimited("user:totp", 10, time.Hour)
	if err != nil {
		t.Fatalf("11th attempt returned error: %s", err)
	}
	if !limited {
		t.Errorf("11th attempt was admitted, expected it to be limited")
	}
}

func TestLimiterIsolatesKeys(t *testing.T) {
	limiter := Limiter{Cache: cache.NewMemory(), Prefix: "test"}
	for i := 0; i < 11; i++ {
		limiter.IsLimited("user-a:totp", 10, time.Hour)
	}
	limited, err := limiter.IsLimited("user-b:totp", 10, time.Hour)
	if err != nil {
		t.Fatalf("attempt returned error: %s", err)
	}
	if limited {
		t.Errorf("attempts on user-a limited user-b")
	}
}

func TestLimiterWindowExpiry(t *testing.T) {
	limiter := Limiter{Cache: cache.NewMemory(), Prefix: "test"}
	for i := 0; i < 11; i++ {
		limiter.IsLimited("user:sms", 10, 10*time.Millisecond)
	}
	limited, _ := limiter.IsLimited("user:sms", 10, 10*time.Millisecond)
	if !limited {
		t.Fatalf("expected to be limited before window expiry")
	}
	time.Sleep(20 * time.Millisecond)
	limited, err := limiter.IsLimited("user:sms", 10, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("attempt after expiry returned error: %s", err)
	}
	if limited {
		t.Errorf("expected a fresh window after expiry")
	}
}

func TestLimiterKeyPrefix(t *testing.T) {
	memory := cache.NewMemory()
	limiter := Limiter{Cache: memory, Prefix: "auth"}
	if _, err := limiter.IsLimited("user:totp", 1, time.Hour); err != nil {
		t.Fatalf("attempt returned error: %s", err)
	}
	if _, err := memory.Get(fmt.Sprintf("auth:%s", "user:totp")); err != nil {
		t.Errorf("expected counter under prefixed key: %s", err)
	}
}
