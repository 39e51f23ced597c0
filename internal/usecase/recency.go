package usecase

import (
	"time"

	"CrisisMonitor/internal/domain"
)

// IsStale reports whether the entry was published more than window before now.
// Entries without a publication time are never stale.
func IsStale(entry domain.Entry, now time.Time, window time.Duration) bool {
	if entry.PublishedAt == nil {
		return false
	}
	return now.Sub(*entry.PublishedAt) > window
}
