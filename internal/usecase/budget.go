package usecase

import "CrisisMonitor/internal/domain"

// RunBudget bounds the accepted and scanned entries of a single pairing.
type RunBudget struct {
	acceptLimit int
	scanLimit   int
	scanned     int
	accepted    int
	stop        domain.StopReason
}

// NewRunBudget returns a budget in the scanning state.
func NewRunBudget(acceptLimit, scanLimit int) *RunBudget {
	return &RunBudget{acceptLimit: acceptLimit, scanLimit: scanLimit}
}

// Next is evaluated before each candidate. It returns false once a limit
// is reached, otherwise it counts the candidate as scanned.
func (b *RunBudget) Next() bool {
	if b.stop != "" {
		return false
	}
	if b.accepted >= b.acceptLimit {
		b.stop = domain.StopAcceptLimit
		return false
	}
	if b.scanned >= b.scanLimit {
		b.stop = domain.StopScanLimit
		return false
	}
	b.scanned++
	return true
}

// Accept counts a persisted, relevant entry.
func (b *RunBudget) Accept() {
	b.accepted++
}

// Exhaust marks the candidate sequence as drained unless a limit already stopped the scan.
func (b *RunBudget) Exhaust() {
	if b.stop == "" {
		b.stop = domain.StopSourceExhausted
	}
}

// State returns the terminal state, or "" while still scanning.
func (b *RunBudget) State() domain.StopReason {
	return b.stop
}

// Scanned returns the number of examined entries.
func (b *RunBudget) Scanned() int {
	return b.scanned
}

// Accepted returns the number of accepted entries.
func (b *RunBudget) Accepted() int {
	return b.accepted
}
