package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRouteLock(ctx context.Context, routeID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseRouteLock(ctx context.Context, routeID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
	_ RoutingBackend     = (*CachedRoutingService)(nil)
)
