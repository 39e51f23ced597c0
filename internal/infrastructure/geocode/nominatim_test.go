package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CrisisMonitor/internal/config"
)

func TestNominatimGeocode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "crisis-test" {
			t.Errorf("missing user agent: %q", r.Header.Get("User-Agent"))
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("limit") != "1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		switch q.Get("q") {
		case "Berlin, Germany":
			_, _ = w.Write([]byte(`[{"lat": "52.5170365", "lon": "13.3888599", "display_name": "Berlin"}]`))
		case "Broken":
			_, _ = w.Write([]byte(`[{"lat": "north", "lon": "1"}]`))
		case "Down":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	geo := NewNominatim(config.GeocoderConfig{Endpoint: server.URL, UserAgent: "crisis-test", Timeout: time.Second})
	ctx := context.Background()

	coords, err := geo.Geocode(ctx, "Berlin, Germany")
	if err != nil {
		t.Fatalf("Geocode error: %v", err)
	}
	if coords.Latitude != 52.5170365 || coords.Longitude != 13.3888599 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}

	coords, err = geo.Geocode(ctx, "Nowhere")
	if err != nil || !coords.IsZero() {
		t.Fatalf("unknown place should be zero without error, got %+v, %v", coords, err)
	}

	coords, err = geo.Geocode(ctx, "   ")
	if err != nil || !coords.IsZero() {
		t.Fatalf("blank place should be zero without error, got %+v, %v", coords, err)
	}

	if _, err := geo.Geocode(ctx, "Broken"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := geo.Geocode(ctx, "Down"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestNominatimTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	geo := NewNominatim(config.GeocoderConfig{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	if _, err := geo.Geocode(context.Background(), "Slow"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
