package parser

import (
	"context"
	"log/slog"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

// PairingSource fetches every feed of a pairing and caps each sequence.
type PairingSource struct {
	fetcher ports.FeedFetcher
	cap     int
	logger  *slog.Logger
}

var _ ports.EntrySource = (*PairingSource)(nil)

// NewPairingSource wires a fetcher with the per-source entry cap.
func NewPairingSource(fetcher ports.FeedFetcher, perSourceCap int, log *slog.Logger) *PairingSource {
	return &PairingSource{
		fetcher: fetcher,
		cap:     perSourceCap,
		logger:  log,
	}
}

// Collect returns one sequence per source in registry order along with the
// number of sources that failed. A failing source contributes an empty sequence.
func (s *PairingSource) Collect(ctx context.Context, pairing domain.Pairing) ([][]domain.Entry, int) {
	sequences := make([][]domain.Entry, 0, len(pairing.Sources))
	failed := 0

	for _, source := range pairing.Sources {
		entries, err := s.fetcher.Fetch(ctx, source)
		if err != nil {
			failed++
			s.warn("feed fetch failed", "pairing", pairing.String(), "source", source, "error", err)
			sequences = append(sequences, nil)
			continue
		}

		if s.cap > 0 && len(entries) > s.cap {
			entries = entries[:s.cap]
		}
		s.debug("source produced entries", "pairing", pairing.String(), "source", source, "count", len(entries))
		sequences = append(sequences, entries)
	}

	return sequences, failed
}

func (s *PairingSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *PairingSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
