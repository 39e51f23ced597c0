package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// Settings carries the budget and gating knobs of a run.
type Settings struct {
	StaleWindow       time.Duration
	AcceptLimit       int
	ScanLimit         int
	SeverityThreshold int
	TextLimit         int
	PrimaryTopic      string
	PrimaryRegion     string
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Pairings   []domain.Pairing
	Entries    ports.EntrySource
	Repository ports.RecordRepository
	Extractor  ports.ContentExtractor
	Classifier ports.Classifier
	Locations  *LocationResolver
	Notifier   ports.Notifier
	Pacer      ports.Pacer
	Stats      ports.StatsRecorder
	Logger     *slog.Logger
	Settings   Settings
}

// Pipeline implements the ingestion, dedup and enrichment workflow.
// Pairings are processed one after another; entries one at a time.
type Pipeline struct {
	pairings   []domain.Pairing
	entries    ports.EntrySource
	repository ports.RecordRepository
	extractor  ports.ContentExtractor
	classifier ports.Classifier
	locations  *LocationResolver
	notifier   ports.Notifier
	pacer      ports.Pacer
	stats      ports.StatsRecorder
	logger     *slog.Logger
	settings   Settings
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locations := deps.Locations
	if locations == nil {
		locations = NewLocationResolver(nil, nil, logger)
	}
	return &Pipeline{
		pairings:   deps.Pairings,
		entries:    deps.Entries,
		repository: deps.Repository,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		locations:  locations,
		notifier:   deps.Notifier,
		pacer:      deps.Pacer,
		stats:      deps.Stats,
		logger:     logger,
		settings:   deps.Settings,
	}
}

// Run processes every pairing in order and returns the run summary.
// Failures below the pairing level never abort the run.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunStats, error) {
	started := time.Now()
	run := domain.RunStats{RunID: uuid.NewString(), Started: now}
	if p.entries == nil || p.repository == nil || p.extractor == nil || p.classifier == nil {
		return run, fmt.Errorf("pipeline is missing a required collaborator")
	}

	log := p.logger.With("run_id", run.RunID)
	log.Info("run started", "pairings", len(p.pairings))

	for _, pairing := range p.pairings {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("run interrupted before %s: %w", pairing, err)
		}
		stats := p.runPairing(ctx, log, pairing, now)
		run.Pairings = append(run.Pairings, stats)
		if p.stats != nil {
			p.stats.RecordPairing(stats)
		}
	}

	run.Duration = time.Since(started)
	scanned, accepted, notified := run.Totals()
	log.Info("run finished",
		"pairings", len(run.Pairings),
		"scanned", scanned,
		"accepted", accepted,
		"notified", notified,
		"duration", run.Duration.Round(time.Millisecond))
	return run, nil
}

// RunPairing processes a single pairing up to its budget limits.
func (p *Pipeline) RunPairing(ctx context.Context, pairing domain.Pairing, now time.Time) domain.PairingStats {
	return p.runPairing(ctx, p.logger, pairing, now)
}

func (p *Pipeline) runPairing(ctx context.Context, log *slog.Logger, pairing domain.Pairing, now time.Time) domain.PairingStats {
	started := time.Now()
	log = log.With("topic", pairing.Topic, "region", pairing.Region)
	stats := domain.NewPairingStats(pairing)

	sequences, failed := p.entries.Collect(ctx, pairing)
	stats.Failed = failed
	candidates := Interleave(sequences)
	log.Debug("pairing candidates", "sources", len(pairing.Sources), "failed_sources", failed, "candidates", len(candidates))

	budget := NewRunBudget(p.settings.AcceptLimit, p.settings.ScanLimit)
	for _, entry := range candidates {
		if !budget.Next() {
			break
		}
		outcome, notified := p.processEntry(ctx, log, pairing, entry, now)
		if outcome == domain.OutcomeAccepted {
			budget.Accept()
		}
		if notified {
			stats.Notified++
		}
		stats.Record(outcome)
	}
	budget.Exhaust()

	stats.Scanned = budget.Scanned()
	stats.Accepted = budget.Accepted()
	stats.Stop = budget.State()
	stats.Duration = time.Since(started)

	log.Info("pairing finished",
		"scanned", stats.Scanned,
		"accepted", stats.Accepted,
		"notified", stats.Notified,
		"stop", stats.Stop,
		"outcomes", stats.Outcomes)
	return stats
}

func (p *Pipeline) processEntry(ctx context.Context, log *slog.Logger, pairing domain.Pairing, entry domain.Entry, now time.Time) (domain.Outcome, bool) {
	log = log.With("title", shorten(entry.Title, 60), "link", entry.Link)

	if IsStale(entry, now, p.settings.StaleWindow) {
		log.Debug("skip stale entry", "published_at", entry.PublishedAt)
		return domain.OutcomeStale, false
	}

	key := domain.NewEntryKey(pairing.Topic, entry.Link)
	if outcome, done := p.checkDuplicate(ctx, log, key); done {
		return outcome, false
	}

	log.Info("new entry", "key", key)

	text, err := p.extractor.Extract(ctx, entry.Link)
	if err != nil {
		log.Warn("extract failed", "error", err)
		return domain.OutcomeExtractionFailed, false
	}
	if text == "" {
		log.Info("extract returned no text")
		return domain.OutcomeExtractionFailed, false
	}

	if p.pacer != nil {
		if err := p.pacer.Wait(ctx); err != nil {
			log.Warn("classification pacing interrupted", "error", err)
			return domain.OutcomeClassificationFailed, false
		}
	}

	verdict, err := p.classifier.Classify(ctx, domain.ClassificationRequest{
		Text:   truncateRunes(text, p.settings.TextLimit),
		Title:  entry.Title,
		Region: pairing.Region,
		Topic:  pairing.Topic,
		Focus:  pairing.Focus,
	})
	if err != nil {
		log.Warn("classification failed", "error", err)
		return domain.OutcomeClassificationFailed, false
	}
	if !verdict.IsRelevant {
		log.Info("entry not relevant")
		return domain.OutcomeIrrelevant, false
	}

	place, coords := p.locations.Resolve(ctx, verdict.LocationName, pairing.Region)

	record := domain.ProcessedRecord{
		ID:                key,
		Category:          pairing.Topic,
		Country:           pairing.Region,
		TitleOriginal:     verdict.TitleOriginal,
		SummaryOriginal:   verdict.SummaryOriginal,
		TitleTranslated:   verdict.TitleTranslated,
		SummaryTranslated: verdict.SummaryTranslated,
		LocationName:      place,
		Coordinates:       coords,
		Severity:          verdict.Severity,
		SourceLink:        entry.Link,
	}

	if outcome, done := p.checkDuplicate(ctx, log, key); done {
		return outcome, false
	}
	if err := p.repository.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrRecordExists) {
			log.Info("record created concurrently", "key", key)
			return domain.OutcomeDuplicate, false
		}
		log.Error("persist failed", "key", key, "error", err)
		return domain.OutcomePersistFailed, false
	}
	log.Info("record stored", "key", key, "severity", record.Severity, "location", place)

	return domain.OutcomeAccepted, p.maybeNotify(ctx, log, pairing, record)
}

// checkDuplicate reports done=true when the entry must not be processed further.
func (p *Pipeline) checkDuplicate(ctx context.Context, log *slog.Logger, key domain.EntryKey) (domain.Outcome, bool) {
	exists, err := p.repository.Exists(ctx, key)
	if err != nil {
		log.Error("existence check failed", "key", key, "error", err)
		return domain.OutcomePersistFailed, true
	}
	if exists {
		log.Debug("already processed", "key", key)
		return domain.OutcomeDuplicate, true
	}
	return "", false
}

func (p *Pipeline) maybeNotify(ctx context.Context, log *slog.Logger, pairing domain.Pairing, record domain.ProcessedRecord) bool {
	if p.notifier == nil {
		return false
	}
	if !pairing.Is(p.settings.PrimaryTopic, p.settings.PrimaryRegion) {
		return false
	}
	if record.Severity < p.settings.SeverityThreshold {
		return false
	}

	alert := domain.Alert{
		Headline: record.TitleTranslated,
		Location: record.LocationName,
		RecordID: record.ID,
	}
	if err := p.notifier.NotifyAlert(ctx, alert); err != nil {
		log.Warn("notification failed", "key", record.ID, "error", err)
		return false
	}
	log.Info("alert sent", "key", record.ID, "severity", record.Severity)
	return true
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func shorten(s string, limit int) string {
	if len([]rune(s)) <= limit {
		return s
	}
	return truncateRunes(s, limit) + "…"
}
