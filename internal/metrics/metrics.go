package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"CrisisMonitor/internal/domain"
	"CrisisMonitor/internal/ports"
)

const namespace = "crisis_monitor"

// Recorder exports per-pairing run statistics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	entries       *prometheus.CounterVec
	stops         *prometheus.CounterVec
	failedSources *prometheus.CounterVec
	notified      *prometheus.CounterVec
	scanned       *prometheus.GaugeVec
	accepted      *prometheus.GaugeVec
	duration      *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

var _ ports.StatsRecorder = (*Recorder)(nil)

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	pairing := []string{"topic", "region"}

	return &Recorder{
		registry: reg,
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Entries examined, by pairing and outcome.",
		}, append(pairing, "outcome")),
		stops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairing_stops_total",
			Help:      "Pairing runs, by terminal budget state.",
		}, append(pairing, "reason")),
		failedSources: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_sources_total",
			Help:      "Feed sources that could not be read.",
		}, pairing),
		notified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Alerts broadcast after a record was stored.",
		}, pairing),
		scanned: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pairing_scanned",
			Help:      "Entries scanned in the last pairing run.",
		}, pairing),
		accepted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pairing_accepted",
			Help:      "Records stored in the last pairing run.",
		}, pairing),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pairing_duration_seconds",
			Help:      "Wall time of a pairing run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, pairing),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pairing_timestamp_seconds",
			Help:      "Unix time of the last finished pairing run.",
		}),
	}
}

// RecordPairing folds one pairing summary into the collectors.
func (r *Recorder) RecordPairing(stats domain.PairingStats) {
	labels := prometheus.Labels{"topic": stats.Topic, "region": stats.Region}

	for outcome, n := range stats.Outcomes {
		r.entries.WithLabelValues(stats.Topic, stats.Region, string(outcome)).Add(float64(n))
	}
	if stats.Stop != "" {
		r.stops.WithLabelValues(stats.Topic, stats.Region, string(stats.Stop)).Inc()
	}
	r.failedSources.With(labels).Add(float64(stats.Failed))
	r.notified.With(labels).Add(float64(stats.Notified))
	r.scanned.With(labels).Set(float64(stats.Scanned))
	r.accepted.With(labels).Set(float64(stats.Accepted))
	r.duration.With(labels).Observe(stats.Duration.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Registry exposes the private registry for scraping or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Pusher ships the recorder's registry to a Prometheus Pushgateway.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher returns nil when url is empty.
func NewPusher(url, job string, recorder *Recorder, client *http.Client) *Pusher {
	if url == "" || recorder == nil {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	p := push.New(url, job).Gatherer(recorder.registry).Client(client).Grouping("instance", "crisis_monitor")
	return &Pusher{pusher: p}
}

// Push replaces the job's metrics on the gateway with the current state.
func (p *Pusher) Push(ctx context.Context, runID string) error {
	if p == nil {
		return nil
	}
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics for run %s: %w", runID, err)
	}
	return nil
}
