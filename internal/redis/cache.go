package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ridepool/internal/domain"
	"ridepool/internal/metrics"
)

// Cache TTL constants
const (
	DistanceCacheTTL = 10 * time.Minute // Road distances drift with traffic
	GeocodeCacheTTL  = 24 * time.Hour   // Addresses rarely move
)

// Key prefixes
const (
	distanceCachePrefix = "routing:distance:"
	geocodeCachePrefix  = "routing:geocode:"
)

// RoutingBackend is the routing provider being cached.
type RoutingBackend interface {
	Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error)
	Distance(ctx context.Context, origin, destination domain.Coordinate) (float64, error)
	Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error)
}

// CachedRoutingService caches distances and geocoding results in Redis.
// Route payloads always come from the backend. Cache failures fall
// through to the backend and are never surfaced.
type CachedRoutingService struct {
	next   RoutingBackend
	client *redis.Client
}

// NewCachedRoutingService wraps next with a Redis cache.
func NewCachedRoutingService(next RoutingBackend, client *redis.Client) *CachedRoutingService {
	return &CachedRoutingService{next: next, client: client}
}

// Distance returns the cached distance for the pair, or asks the backend.
func (s *CachedRoutingService) Distance(ctx context.Context, origin, destination domain.Coordinate) (float64, error) {
	key := distanceCachePrefix + origin.String() + "|" + destination.String()

	if d, err := s.client.Get(ctx, key).Float64(); err == nil {
		metrics.CacheHit("distance")
		return d, nil
	}
	metrics.CacheMiss("distance")

	d, err := s.next.Distance(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	_ = s.client.Set(ctx, key, d, DistanceCacheTTL).Err()
	return d, nil
}

// Geocode returns the cached coordinate for the address, or asks the backend.
func (s *CachedRoutingService) Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error) {
	key := geocodeCachePrefix + strings.ToLower(address.Query())

	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var c domain.Coordinate
		if json.Unmarshal(data, &c) == nil {
			metrics.CacheHit("geocode")
			return c, nil
		}
	}
	metrics.CacheMiss("geocode")

	c, err := s.next.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinate{}, err
	}
	if data, err := json.Marshal(c); err == nil {
		_ = s.client.Set(ctx, key, data, GeocodeCacheTTL).Err()
	}
	return c, nil
}

// Route is never cached; a chosen pickup always gets a fresh route.
func (s *CachedRoutingService) Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error) {
	return s.next.Route(ctx, origin, destination)
}
