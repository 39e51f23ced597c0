package usecase

import "CrisisMonitor/internal/domain"

// Interleave merges per-source sequences round-robin: the first entry of
// every source, then the second of every source, and so on. Exhausted
// sources drop out of the rotation; order within a source is preserved.
func Interleave(sequences [][]domain.Entry) []domain.Entry {
	total, longest := 0, 0
	for _, seq := range sequences {
		total += len(seq)
		if len(seq) > longest {
			longest = len(seq)
		}
	}

	merged := make([]domain.Entry, 0, total)
	for pos := 0; pos < longest; pos++ {
		for _, seq := range sequences {
			if pos < len(seq) {
				merged = append(merged, seq[pos])
			}
		}
	}
	return merged
}
