//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ambufleet/ambufleet/internal/testutil"
)

func TestIntegrationRevocation(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	revoked, err := c.IsUserRevoked(ctx, "user-1")
	if err != nil {
		t.Fatalf("IsUserRevoked failed: %v", err)
	}
	if revoked {
		t.Error("fresh user should not be revoked")
	}

	if err := c.RevokeUser(ctx, "user-1", time.Minute); err != nil {
		t.Fatalf("RevokeUser failed: %v", err)
	}

	revoked, err = c.IsUserRevoked(ctx, "user-1")
	if err != nil {
		t.Fatalf("IsUserRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("user should be revoked after RevokeUser")
	}

	// Other users are unaffected.
	revoked, err = c.IsUserRevoked(ctx, "user-2")
	if err != nil {
		t.Fatalf("IsUserRevoked failed: %v", err)
	}
	if revoked {
		t.Error("revocation leaked to another user")
	}
}

func TestIntegrationRevocationExpires(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.RevokeUser(ctx, "user-ttl", time.Second); err != nil {
		t.Fatalf("RevokeUser failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	revoked, err := c.IsUserRevoked(ctx, "user-ttl")
	if err != nil {
		t.Fatalf("IsUserRevoked failed: %v", err)
	}
	if revoked {
		t.Error("revocation entry should expire with the token lifetime")
	}
}

func TestIntegrationLoginRateLimit_BurstThenDeny(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const burst = 3
	ip := "203.0.113.7"

	for i := 0; i < burst; i++ {
		result, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("attempt %d should be allowed within burst", i+1)
		}
	}

	result, err := c.CheckLoginRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if result.Allowed {
		t.Error("attempt beyond burst should be denied")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", result.RetryAfter)
	}
}

func TestIntegrationLoginRateLimit_PerIPIsolation(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for i := 0; i < 3; i++ {
		if _, err := c.CheckLoginRateLimit(ctx, "203.0.113.8", 1, 3); err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
	}

	result, err := c.CheckLoginRateLimit(ctx, "203.0.113.9", 1, 3)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if !result.Allowed {
		t.Error("another IP should not share the exhausted bucket")
	}
}

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}
