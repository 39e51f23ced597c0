package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// Nominatim resolves place names via an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

var _ ports.Geocoder = (*Nominatim)(nil)

// NewNominatim creates a client with a bounded request timeout.
func NewNominatim(cfg config.GeocoderConfig) *Nominatim {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the best match. Unknown places yield
// the zero coordinate and no error.
func (n *Nominatim) Geocode(ctx context.Context, name string) (domain.Coordinates, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Coordinates{}, nil
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("format", "json")
	query.Set("limit", "1")

	var results []place
	if err := n.get(ctx, query, &results); err != nil {
		return domain.Coordinates{}, err
	}
	if len(results) == 0 {
		return domain.Coordinates{}, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func (n *Nominatim) get(ctx context.Context, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
