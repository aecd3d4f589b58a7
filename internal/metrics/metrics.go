// Package metrics содержит метрики Prometheus сервиса дашборда.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — набор коллекторов сервиса.
type Metrics struct {
	SourceFailures   *prometheus.CounterVec
	ComputeDuration  prometheus.Histogram
	CacheHits        prometheus.Counter
	SubmittedRecords *prometheus.CounterVec
	Snapshots        *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "church_dashboard",
			Name:      "source_failures_total",
			Help:      "Failed dashboard data sources by source name.",
		}, []string{"source"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "church_dashboard",
			Name:      "compute_duration_seconds",
			Help:      "Time spent fetching sources and computing dashboard stats.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "church_dashboard",
			Name:      "cache_hits_total",
			Help:      "Dashboard stats served from cache.",
		}),
		SubmittedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "church_dashboard",
			Name:      "attendance_submitted_total",
			Help:      "Attendance records submitted to the church API by outcome.",
		}, []string{"outcome"}),
		Snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "church_dashboard",
			Name:      "snapshots_total",
			Help:      "Dashboard snapshot runs by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.SourceFailures, m.ComputeDuration, m.CacheHits, m.SubmittedRecords, m.Snapshots)
	return m
}

// Noop возвращает коллекторы, не зарегистрированные нигде. Удобно в тестах.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveSince записывает длительность расчёта от start.
func (m *Metrics) ObserveSince(start time.Time) {
	m.ComputeDuration.Observe(time.Since(start).Seconds())
}
