package usecase

import (
	"context"
	"log/slog"
	"strings"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// LocationResolver turns a classifier place name into coordinates with a
// per-region fallback place.
type LocationResolver struct {
	geocoder      ports.Geocoder
	defaultPlaces func(region string) string
	logger        *slog.Logger
}

// NewLocationResolver wires the geocoder and the region default lookup.
func NewLocationResolver(geocoder ports.Geocoder, defaultPlaces func(string) string, logger *slog.Logger) *LocationResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationResolver{geocoder: geocoder, defaultPlaces: defaultPlaces, logger: logger}
}

// Resolve returns the final place name and its coordinates. Coordinates are
// best effort: the zero coordinate is returned when both lookups fail.
func (r *LocationResolver) Resolve(ctx context.Context, locationName, region string) (string, domain.Coordinates) {
	fallback := r.defaultPlace(region)

	name := strings.TrimSpace(locationName)
	if region != domain.GlobalRegion && !strings.Contains(name, region) {
		name = fallback
	}

	coords := r.lookup(ctx, name)
	if !coords.IsZero() {
		return name, coords
	}

	if name == fallback || fallback == "" {
		return name, domain.Coordinates{}
	}

	r.logger.Debug("geocode fallback", "place", name, "fallback", fallback, "region", region)
	return fallback, r.lookup(ctx, fallback)
}

func (r *LocationResolver) lookup(ctx context.Context, place string) domain.Coordinates {
	if r.geocoder == nil || strings.TrimSpace(place) == "" {
		return domain.Coordinates{}
	}
	coords, err := r.geocoder.Geocode(ctx, place)
	if err != nil {
		r.logger.Warn("geocode failed", "place", place, "error", err)
		return domain.Coordinates{}
	}
	return coords
}

func (r *LocationResolver) defaultPlace(region string) string {
	if r.defaultPlaces == nil {
		return ""
	}
	return r.defaultPlaces(region)
}
