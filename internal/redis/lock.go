package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's
// token, so an update that outlived its TTL cannot free the next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRouteLock attempts to acquire the update lock for a trip route.
// On success it returns the token that ReleaseRouteLock must present.
func (s *LockStore) AcquireRouteLock(ctx context.Context, routeID string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := s.client.SetNX(ctx, routeLockKey(routeID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseRouteLock releases the update lock for a trip route if token still owns it.
func (s *LockStore) ReleaseRouteLock(ctx context.Context, routeID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{routeLockKey(routeID)}, token).Err()
}

func routeLockKey(routeID string) string {
	return "lock:trip_route:" + routeID
}
