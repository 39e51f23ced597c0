package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"CrisisMonitor/internal/ports"
)

// Pacer enforces a fixed minimum gap between successive calls to an
// external API. The first call passes immediately.
type Pacer struct {
	limiter *rate.Limiter
}

var _ ports.Pacer = (*Pacer)(nil)

// NewPacer builds a pacer; a non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
