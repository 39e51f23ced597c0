package domain

import "time"

// Outcome is the result of examining a single entry.
type Outcome string

const (
	OutcomeAccepted             Outcome = "accepted"
	OutcomeDuplicate            Outcome = "skipped_duplicate"
	OutcomeStale                Outcome = "skipped_stale"
	OutcomeIrrelevant           Outcome = "skipped_irrelevant"
	OutcomeExtractionFailed     Outcome = "failed_extraction"
	OutcomeClassificationFailed Outcome = "failed_classification"
	OutcomePersistFailed        Outcome = "failed_persist"
)

// StopReason is the terminal state of a pairing's scan budget.
type StopReason string

const (
	StopAcceptLimit     StopReason = "accept_limit_reached"
	StopScanLimit       StopReason = "scan_limit_reached"
	StopSourceExhausted StopReason = "source_exhausted"
)

// PairingStats aggregates per-entry outcomes for one pairing run.
type PairingStats struct {
	Topic    string
	Region   string
	Sources  int
	Failed   int
	Scanned  int
	Accepted int
	Notified int
	Stop     StopReason
	Outcomes map[Outcome]int
	Duration time.Duration
}

// NewPairingStats returns zeroed stats for the pairing.
func NewPairingStats(p Pairing) PairingStats {
	return PairingStats{
		Topic:    p.Topic,
		Region:   p.Region,
		Sources:  len(p.Sources),
		Outcomes: map[Outcome]int{},
	}
}

// Record counts one entry outcome.
func (s *PairingStats) Record(o Outcome) {
	if s.Outcomes == nil {
		s.Outcomes = map[Outcome]int{}
	}
	s.Outcomes[o]++
}

// RunStats summarises a full pass over every pairing.
type RunStats struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Pairings []PairingStats
}

// Totals sums scanned, accepted and notified counts across pairings.
func (r RunStats) Totals() (scanned, accepted, notified int) {
	for _, p := range r.Pairings {
		scanned += p.Scanned
		accepted += p.Accepted
		notified += p.Notified
	}
	return scanned, accepted, notified
}
