package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CrisisMonitor/internal/config"
)

const emptyFeed = `<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`

func testConfig(feedURL string) config.Config {
	disabled := false
	return config.Config{
		Logging:       config.LoggingConfig{Level: "error"},
		Database:      config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Classifier:    config.ClassifierConfig{Endpoint: "http://127.0.0.1:1/", Model: "test", APIKey: "key"},
		Feeds:         config.FeedsConfig{Timeout: time.Second, PerSourceCap: 15},
		Pipeline:      config.PipelineConfig{StaleWindow: 24 * time.Hour, AcceptLimit: 10, ScanLimit: 60, SeverityThreshold: 8, PrimaryTopic: "Gundem", PrimaryRegion: "Global"},
		Notifications: config.NotificationConfig{Enabled: &disabled},
		Regions:       map[string]string{"Global": "New York, USA"},
		Topics: []config.TopicConfig{{
			Name:    "Gundem",
			Regions: []config.RegionConfig{{Name: "Global", Feeds: []string{feedURL}}},
		}},
	}
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://example.org/rss")
	cfg.Classifier.APIKey = ""

	_, err := New(context.Background(), cfg, nil)
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestRunOnceWithEmptyFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(emptyFeed))
	}))
	defer server.Close()

	application, err := New(context.Background(), testConfig(server.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunDaemonStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://example.org/rss")
	cfg.Scheduler.CronExpression = "@daily"

	application, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("daemon did not stop")
	}
}
