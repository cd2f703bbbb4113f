// Package metrics exposes the Prometheus collectors for the kiosk API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the scan collectors.
type Metrics struct {
	ScanOutcomes  *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	PhotoMisses   prometheus.Counter
	MembersEnroll prometheus.Counter
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ScanOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "scan_outcomes_total",
			Help:      "Scans handled, by outcome status and ledger action.",
		}, []string{"status", "action"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kiosk",
			Name:      "scan_duration_seconds",
			Help:      "Time to resolve a scan, including store round trips.",
			Buckets:   prometheus.DefBuckets,
		}),
		PhotoMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "photo_lookup_misses_total",
			Help:      "Photo lookups that returned nothing or failed.",
		}),
		MembersEnroll: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kiosk",
			Name:      "members_enrolled_total",
			Help:      "Member identities created with a photo.",
		}),
	}
	reg.MustRegister(m.ScanOutcomes, m.ScanDuration, m.PhotoMisses, m.MembersEnroll)
	return m
}

// ObserveScan records one handled scan. A nil receiver is a no-op.
func (m *Metrics) ObserveScan(status, action string, took time.Duration) {
	if m == nil {
		return
	}
	m.ScanOutcomes.WithLabelValues(status, action).Inc()
	m.ScanDuration.Observe(took.Seconds())
}

// PhotoMiss counts a failed or empty photo lookup. A nil receiver is a no-op.
func (m *Metrics) PhotoMiss() {
	if m == nil {
		return
	}
	m.PhotoMisses.Inc()
}

// Enrolled counts a created member. A nil receiver is a no-op.
func (m *Metrics) Enrolled() {
	if m == nil {
		return
	}
	m.MembersEnroll.Inc()
}
