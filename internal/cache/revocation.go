package cache

import (
	"context"
	"time"
)

// revocationPrefix is the Redis key prefix for revoked users.
const revocationPrefix = "revoked:user:"

// Tokens are self-contained, so a deactivated or demoted user keeps a
// working token until it expires. The revocation list closes that
// window: a user id placed on the list is rejected at the access gate
// for the remaining token lifetime. Entries expire on their own once
// every token issued before revocation must have expired.

// revocationKey builds the Redis key for a user id.
func revocationKey(userID string) string {
	return revocationPrefix + userID
}

// RevokeUser puts a user id on the revocation list for the given TTL.
// The TTL should be the token lifetime: older tokens carry earlier
// expiries, so nothing outlives the entry.
func (c *Cache) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, revocationKey(userID), "1", ttl).Err()
}

// IsUserRevoked reports whether the user id is on the revocation list.
// Errors are returned so the caller can decide the failure policy; the
// access gate fails open to keep the API available when Redis is down.
func (c *Cache) IsUserRevoked(ctx context.Context, userID string) (bool, error) {
	n, err := c.client.Exists(ctx, revocationKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
