package ports

import (
	"context"
	"time"

	"CrisisMonitor/internal/domain"
)

// FeedFetcher reads the raw entries of a single feed source.
type FeedFetcher interface {
	Fetch(ctx context.Context, sourceURL string) ([]domain.Entry, error)
}

// EntrySource collects the capped per-source entry sequences of a pairing.
// Source-level failures are isolated and surface as empty sequences.
type EntrySource interface {
	Collect(ctx context.Context, pairing domain.Pairing) ([][]domain.Entry, int)
}

// ContentExtractor downloads an article and returns its readable text.
type ContentExtractor interface {
	Extract(ctx context.Context, articleURL string) (string, error)
}

// Classifier scores, summarises and translates an article.
type Classifier interface {
	Classify(ctx context.Context, req domain.ClassificationRequest) (domain.Classification, error)
}

// Geocoder resolves a free-text place name into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (domain.Coordinates, error)
}

// RecordRepository is the write-once store of processed records.
type RecordRepository interface {
	Exists(ctx context.Context, key domain.EntryKey) (bool, error)
	Create(ctx context.Context, record domain.ProcessedRecord) error
}

// Notifier broadcasts high-severity alerts.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert domain.Alert) error
}

// Pacer blocks between successive classification calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// StatsRecorder receives per-pairing statistics for export.
type StatsRecorder interface {
	RecordPairing(stats domain.PairingStats)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
