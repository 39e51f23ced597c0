package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/infrastructure/extract"
	"CrisisMonitor/internal/infrastructure/geocode"
	"CrisisMonitor/internal/infrastructure/llm"
	"CrisisMonitor/internal/infrastructure/parser"
	"CrisisMonitor/internal/infrastructure/ratelimit"
	"CrisisMonitor/internal/infrastructure/scheduler"
	"CrisisMonitor/internal/infrastructure/storage"
	"CrisisMonitor/internal/infrastructure/telegram"
	"CrisisMonitor/internal/logging"
	"CrisisMonitor/internal/metrics"
	"CrisisMonitor/internal/ports"
	"CrisisMonitor/internal/sources"
	"CrisisMonitor/internal/usecase"
	"CrisisMonitor/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	logger    *slog.Logger
	scheduler *usecase.Scheduler
}

// New validates the configuration and builds every adapter. Missing
// credentials and an unreachable database are fatal.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.File)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := sources.NewRegistry(cfg.Topics)
	if err != nil {
		return nil, fmt.Errorf("source registry: %w", err)
	}

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	repository := storage.NewRepository(db, cfg.Database.Driver)
	if err := repository.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	notifier, err := newNotifier(cfg.Notifications, baseLogger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	fetcher := parser.NewFeedFetcher(nil, cfg.Feeds.UserAgent, cfg.Feeds.Timeout)
	geocoder := geocode.NewNominatim(cfg.Geocoder)
	recorder := metrics.NewRecorder()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Pairings:   registry.Pairings(),
		Entries:    parser.NewPairingSource(fetcher, cfg.Feeds.PerSourceCap, baseLogger.With("component", "source")),
		Repository: repository,
		Extractor:  extract.NewExtractor(nil, cfg.Extractor.UserAgent, cfg.Extractor.Timeout),
		Classifier: llm.NewClassifier(cfg.Classifier),
		Locations:  usecase.NewLocationResolver(geocoder, cfg.DefaultPlace, baseLogger.With("component", "geocode")),
		Notifier:   notifier,
		Pacer:      ratelimit.NewPacer(cfg.Classifier.Pacing),
		Stats:      recorder,
		Logger:     baseLogger.With("component", "pipeline"),
		Settings: usecase.Settings{
			StaleWindow:       cfg.Pipeline.StaleWindow,
			AcceptLimit:       cfg.Pipeline.AcceptLimit,
			ScanLimit:         cfg.Pipeline.ScanLimit,
			SeverityThreshold: cfg.Pipeline.SeverityThreshold,
			TextLimit:         cfg.Classifier.TextLimit,
			PrimaryTopic:      cfg.Pipeline.PrimaryTopic,
			PrimaryRegion:     cfg.Pipeline.PrimaryRegion,
		},
	})

	if _, ok := registry.Lookup(cfg.Pipeline.PrimaryTopic, cfg.Pipeline.PrimaryRegion); !ok {
		baseLogger.Warn("primary pairing not configured, alerts disabled",
			"topic", cfg.Pipeline.PrimaryTopic, "region", cfg.Pipeline.PrimaryRegion)
	}

	var driver ports.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver = scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), baseLogger.With("component", "scheduler"))
	}

	runs := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	if pusher := metrics.NewPusher(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, recorder, nil); pusher != nil {
		runs.AfterRun(func(ctx context.Context, stats domain.RunStats) {
			if err := pusher.Push(ctx, stats.RunID); err != nil {
				baseLogger.Warn("metrics push failed", "error", err)
			}
		})
	}

	baseLogger.Info("application configured",
		"pairings", len(registry.Pairings()),
		"database", cfg.Database.Driver,
		"notifications", notifier != nil,
		"cron", cfg.Scheduler.CronExpression)

	return &Application{cfg: cfg, db: db, logger: baseLogger, scheduler: runs}, nil
}

func newNotifier(cfg config.NotificationConfig, log *slog.Logger) (ports.Notifier, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	if err := tgbotapi.SetLogger(logger.New(log, "telegram")); err != nil {
		return nil, fmt.Errorf("telegram logger: %w", err)
	}
	notifier, err := telegram.NewNotifier(cfg, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}
	return notifier, nil
}

// Run performs a single pass when no cron expression is configured.
// Otherwise it runs on schedule until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.CronExpression == "" {
		now := time.Now().In(a.cfg.Scheduler.Location())
		_, err := a.scheduler.RunNow(ctx, now)
		return err
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	return nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
