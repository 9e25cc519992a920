package qshadow

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks scheduler progress. The exported fields mirror the
// prometheus collectors so callers without a registry can still read them.
type Metrics struct {
	mu                   sync.RWMutex
	RoundsEmitted        int
	FullMatches          int64
	ObservablesSatisfied int
	ActiveObservables    int
	TotalRoundTime       time.Duration
	AverageRoundLatency  time.Duration
	Termination          Termination

	rounds        prometheus.Counter
	matches       prometheus.Counter
	satisfied     prometheus.Counter
	active        prometheus.Gauge
	roundDuration prometheus.Histogram
}

/*
NewMetrics creates the scheduler collectors and registers them with reg.
A nil reg leaves them unregistered, which is what tests and library users
without a registry want.
*/
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qshadow",
			Name:      "rounds_emitted_total",
			Help:      "Measurement rounds produced by the derandomized scheduler.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qshadow",
			Name:      "full_matches_total",
			Help:      "Observable full matches accumulated across rounds.",
		}),
		satisfied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qshadow",
			Name:      "observables_satisfied_total",
			Help:      "Observables that reached their measurement target.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qshadow",
			Name:      "active_observables",
			Help:      "Observables still needing measurements.",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qshadow",
			Name:      "round_duration_seconds",
			Help:      "Time spent selecting the bases of one round.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.rounds, m.matches, m.satisfied, m.active, m.roundDuration)
	}

	return m
}

// observeStart records the set a scheduler starts from. Observables with a
// zero target are satisfied before the first round and count as such.
func (m *Metrics) observeStart(satisfied, active int) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.ObservablesSatisfied += satisfied
	m.ActiveObservables = active
	m.mu.Unlock()

	m.satisfied.Add(float64(satisfied))
	m.active.Set(float64(active))
}

func (m *Metrics) recordRound(startTime time.Time, fullMatches, satisfied, active int) {
	if m == nil {
		return
	}

	duration := time.Since(startTime)

	m.mu.Lock()
	m.RoundsEmitted++
	m.FullMatches += int64(fullMatches)
	m.ObservablesSatisfied += satisfied
	m.ActiveObservables = active
	m.TotalRoundTime += duration
	m.AverageRoundLatency = m.TotalRoundTime / time.Duration(m.RoundsEmitted)
	m.mu.Unlock()

	m.rounds.Inc()
	m.matches.Add(float64(fullMatches))
	m.satisfied.Add(float64(satisfied))
	m.active.Set(float64(active))
	m.roundDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordTermination(t Termination) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.Termination = t
	m.mu.Unlock()
}

// ExportMetrics returns a snapshot suitable for logging, or nil without
// metrics.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"rounds_emitted":        m.RoundsEmitted,
		"full_matches":          m.FullMatches,
		"observables_satisfied": m.ObservablesSatisfied,
		"active_observables":    m.ActiveObservables,
		"avg_round_latency_us":  m.AverageRoundLatency.Microseconds(),
		"termination":           m.Termination.String(),
	}
}
