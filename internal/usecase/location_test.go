package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"CrisisMonitor/internal/domain"
)

func newTestResolver(g *fakeGeocoder) *LocationResolver {
	return NewLocationResolver(g, func(r string) string { return testDefaults[r] }, nil)
}

func TestResolveGlobalUsesClassifierPlace(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{places: map[string]domain.Coordinates{"Tokyo, Japan": {Latitude: 35.68, Longitude: 139.69}}}
	name, coords := newTestResolver(g).Resolve(context.Background(), " Tokyo, Japan ", "Global")

	assert.Equal(t, "Tokyo, Japan", name)
	assert.Equal(t, domain.Coordinates{Latitude: 35.68, Longitude: 139.69}, coords)
	assert.Equal(t, []string{"Tokyo, Japan"}, g.calls)
}

func TestResolveRegionalKeepsPlaceInRegion(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{places: map[string]domain.Coordinates{"Munich, Germany": {Latitude: 48.13, Longitude: 11.58}}}
	name, coords := newTestResolver(g).Resolve(context.Background(), "Munich, Germany", "Germany")

	assert.Equal(t, "Munich, Germany", name)
	assert.False(t, coords.IsZero())
}

func TestResolveRegionalReplacesForeignPlace(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{places: map[string]domain.Coordinates{"Berlin, Germany": {Latitude: 52.52, Longitude: 13.4}}}
	name, coords := newTestResolver(g).Resolve(context.Background(), "Paris, France", "Germany")

	assert.Equal(t, "Berlin, Germany", name)
	assert.Equal(t, domain.Coordinates{Latitude: 52.52, Longitude: 13.4}, coords)
	assert.Equal(t, []string{"Berlin, Germany"}, g.calls, "default place is geocoded once")
}

func TestResolveRetriesWithDefaultPlace(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{places: map[string]domain.Coordinates{"New York, USA": {Latitude: 40.71, Longitude: -74.0}}}
	name, coords := newTestResolver(g).Resolve(context.Background(), "Nowhere Land", "Global")

	assert.Equal(t, "New York, USA", name)
	assert.Equal(t, domain.Coordinates{Latitude: 40.71, Longitude: -74.0}, coords)
	assert.Equal(t, []string{"Nowhere Land", "New York, USA"}, g.calls)
}

func TestResolveGeocoderFailure(t *testing.T) {
	t.Parallel()

	g := &fakeGeocoder{err: errors.New("503")}
	name, coords := newTestResolver(g).Resolve(context.Background(), "Paris, France", "Germany")

	assert.Equal(t, "Berlin, Germany", name)
	assert.True(t, coords.IsZero())
}

func TestResolveWithoutGeocoder(t *testing.T) {
	t.Parallel()

	name, coords := NewLocationResolver(nil, nil, nil).Resolve(context.Background(), "Paris, France", "Global")

	assert.Equal(t, "Paris, France", name)
	assert.True(t, coords.IsZero())
}
