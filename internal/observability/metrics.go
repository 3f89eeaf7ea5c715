// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the market.
type Metrics struct {
	registry *prometheus.Registry

	// Engine metrics
	CurrentTick   prometheus.Gauge
	CurrentRound  prometheus.Gauge
	CollectedFees prometheus.Gauge
	Bets          *prometheus.CounterVec
	StakedVolume  prometheus.Counter
	RoundsSettled *prometheus.CounterVec
	PaidOut       *prometheus.CounterVec

	// Persistence metrics
	CommitDuration prometheus.Histogram
	CommitErrors   prometheus.Counter
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "updown_market"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		CurrentTick: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "current_tick",
			Help:      "Current value of the market clock",
		}),
		CurrentRound: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "current_round_id",
			Help:      "Id of the round currently accepting or awaiting settlement",
		}),
		CollectedFees: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "collected_fees",
			Help:      "House fees collected and not yet withdrawn",
		}),
		Bets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "bets_total",
			Help:      "Bets received by outcome (accepted or rejection reason)",
		}, []string{"outcome"}),
		StakedVolume: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "staked_volume_total",
			Help:      "Total value of accepted stakes",
		}),
		RoundsSettled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "rounds_settled_total",
			Help:      "Settled rounds by winning direction",
		}, []string{"direction"}),
		PaidOut: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "paid_out_total",
			Help:      "Value transferred out of the market by transfer kind",
		}, []string{"kind"}),

		CommitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "commit_duration_seconds",
			Help:      "Time spent persisting one market invocation",
			Buckets:   prometheus.DefBuckets,
		}),
		CommitErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "commit_errors_total",
			Help:      "Market invocations rolled back because persistence failed",
		}),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordBet(outcome string, stake uint64, accepted bool) {
	m.Bets.WithLabelValues(outcome).Inc()
	if accepted {
		m.StakedVolume.Add(float64(stake))
	}
}

func (m *Metrics) RecordSettlement(direction string) {
	m.RoundsSettled.WithLabelValues(direction).Inc()
}

func (m *Metrics) RecordPaidOut(kind string, amount uint64) {
	m.PaidOut.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) UpdateEngine(tick, roundID uint32, fees uint64) {
	m.CurrentTick.Set(float64(tick))
	m.CurrentRound.Set(float64(roundID))
	m.CollectedFees.Set(float64(fees))
}

func (m *Metrics) RecordCommit(seconds float64, err error) {
	m.CommitDuration.Observe(seconds)
	if err != nil {
		m.CommitErrors.Inc()
	}
}
