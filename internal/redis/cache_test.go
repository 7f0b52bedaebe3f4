package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepool/internal/domain"
)

var (
	origin      = domain.Coordinate{Lat: -23.5505, Lng: -46.6333}
	destination = domain.Coordinate{Lat: -23.5614, Lng: -46.6559}
)

// fakeBackend counts calls and returns fixed answers.
type fakeBackend struct {
	distance float64
	coord    domain.Coordinate
	route    json.RawMessage
	err      error

	distanceCalls int
	geocodeCalls  int
	routeCalls    int
}

func (b *fakeBackend) Distance(ctx context.Context, o, d domain.Coordinate) (float64, error) {
	b.distanceCalls++
	return b.distance, b.err
}

func (b *fakeBackend) Geocode(ctx context.Context, a domain.Address) (domain.Coordinate, error) {
	b.geocodeCalls++
	return b.coord, b.err
}

func (b *fakeBackend) Route(ctx context.Context, o, d domain.Coordinate) (json.RawMessage, error) {
	b.routeCalls++
	return b.route, b.err
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedDistance_HitReturnsUpstreamValue(t *testing.T) {
	mr, client := newTestClient(t)
	backend := &fakeBackend{distance: 2345.5}
	svc := NewCachedRoutingService(backend, client)
	ctx := context.Background()

	first, err := svc.Distance(ctx, origin, destination)
	require.NoError(t, err)
	second, err := svc.Distance(ctx, origin, destination)
	require.NoError(t, err)

	assert.Equal(t, 2345.5, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.distanceCalls)
	assert.True(t, mr.Exists(distanceCachePrefix+origin.String()+"|"+destination.String()))
	assert.Equal(t, DistanceCacheTTL, mr.TTL(distanceCachePrefix+origin.String()+"|"+destination.String()))
}

func TestCachedDistance_MissFallsThrough(t *testing.T) {
	mr, client := newTestClient(t)
	backend := &fakeBackend{distance: 100}
	svc := NewCachedRoutingService(backend, client)
	ctx := context.Background()

	_, err := svc.Distance(ctx, origin, destination)
	require.NoError(t, err)

	// The reverse pair is a different key.
	_, err = svc.Distance(ctx, destination, origin)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.distanceCalls)

	mr.FastForward(DistanceCacheTTL)
	_, err = svc.Distance(ctx, origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.distanceCalls)
}

func TestCachedDistance_UnreachableRedisFallsThrough(t *testing.T) {
	mr, client := newTestClient(t)
	backend := &fakeBackend{distance: 42}
	svc := NewCachedRoutingService(backend, client)
	mr.Close()

	d, err := svc.Distance(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 42.0, d)
	assert.Equal(t, 1, backend.distanceCalls)
}

func TestCachedRouting_ErrorsAreNotCached(t *testing.T) {
	_, client := newTestClient(t)
	backend := &fakeBackend{err: errors.New("upstream down")}
	svc := NewCachedRoutingService(backend, client)
	ctx := context.Background()

	_, err := svc.Distance(ctx, origin, destination)
	require.Error(t, err)

	backend.err = nil
	backend.distance = 700
	d, err := svc.Distance(ctx, origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 700.0, d)
	assert.Equal(t, 2, backend.distanceCalls)
}

func TestCachedGeocode(t *testing.T) {
	_, client := newTestClient(t)
	backend := &fakeBackend{coord: destination}
	svc := NewCachedRoutingService(backend, client)
	ctx := context.Background()

	got, err := svc.Geocode(ctx, domain.Address{Street: "Avenida Paulista", Number: "1000", City: "Sao Paulo"})
	require.NoError(t, err)
	assert.Equal(t, destination, got)

	// Lookups are case-insensitive.
	got, err = svc.Geocode(ctx, domain.Address{Street: "AVENIDA PAULISTA", Number: "1000", City: "SAO PAULO"})
	require.NoError(t, err)
	assert.Equal(t, destination, got)
	assert.Equal(t, 1, backend.geocodeCalls)
}

func TestCachedRoute_NeverCached(t *testing.T) {
	mr, client := newTestClient(t)
	backend := &fakeBackend{route: json.RawMessage(`{"summary":"Av. Paulista"}`)}
	svc := NewCachedRoutingService(backend, client)
	ctx := context.Background()

	for range 3 {
		route, err := svc.Route(ctx, origin, destination)
		require.NoError(t, err)
		assert.JSONEq(t, `{"summary":"Av. Paulista"}`, string(route))
	}
	assert.Equal(t, 3, backend.routeCalls)
	assert.Empty(t, mr.Keys())
}
