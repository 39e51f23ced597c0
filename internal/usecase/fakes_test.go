package usecase

import (
	"context"
	"errors"
	"sync"

	"CrisisMonitor/internal/domain"
)

type fakeSource struct {
	sequences map[string][][]domain.Entry
	failed    int
}

func (f *fakeSource) Collect(_ context.Context, pairing domain.Pairing) ([][]domain.Entry, int) {
	return f.sequences[pairing.String()], f.failed
}

type fakeRepository struct {
	mu        sync.Mutex
	records   map[domain.EntryKey]domain.ProcessedRecord
	existsErr error
	createErr error
	// raced keys appear only after the first existence check.
	raced  map[domain.EntryKey]bool
	checks map[domain.EntryKey]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		records: map[domain.EntryKey]domain.ProcessedRecord{},
		raced:   map[domain.EntryKey]bool{},
		checks:  map[domain.EntryKey]int{},
	}
}

func (f *fakeRepository) Exists(_ context.Context, key domain.EntryKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.checks[key]++
	if f.raced[key] && f.checks[key] > 1 {
		return true, nil
	}
	_, ok := f.records[key]
	return ok, nil
}

func (f *fakeRepository) Create(_ context.Context, record domain.ProcessedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	key := record.ID
	if _, ok := f.records[key]; ok {
		return domain.ErrRecordExists
	}
	f.records[key] = record
	return nil
}

func (f *fakeRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeExtractor struct {
	texts map[string]string
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, link string) (string, error) {
	f.calls++
	text, ok := f.texts[link]
	if !ok {
		return "article text for " + link, nil
	}
	if text == "!error" {
		return "", errors.New("403 forbidden")
	}
	return text, nil
}

type fakeClassifier struct {
	verdicts map[string]domain.Classification
	errs     map[string]error
	fallback domain.Classification
	requests []domain.ClassificationRequest
}

func (f *fakeClassifier) Classify(_ context.Context, req domain.ClassificationRequest) (domain.Classification, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.errs[req.Title]; ok {
		return domain.Classification{}, err
	}
	if v, ok := f.verdicts[req.Title]; ok {
		return v, nil
	}
	return f.fallback, nil
}

type fakeGeocoder struct {
	places map[string]domain.Coordinates
	err    error
	calls  []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, place string) (domain.Coordinates, error) {
	f.calls = append(f.calls, place)
	if f.err != nil {
		return domain.Coordinates{}, f.err
	}
	return f.places[place], nil
}

type fakeNotifier struct {
	alerts []domain.Alert
	err    error
}

func (f *fakeNotifier) NotifyAlert(_ context.Context, alert domain.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

type fakeStats struct{ pairings []domain.PairingStats }

func (f *fakeStats) RecordPairing(stats domain.PairingStats) {
	f.pairings = append(f.pairings, stats)
}
