// Package metrics holds the prometheus collectors of both binaries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	registry *prometheus.Registry

	batchItems     *prometheus.CounterVec
	dispatches     *prometheus.CounterVec
	agentJobCancel *prometheus.CounterVec
	workerJobs     *prometheus.CounterVec
	encodeDuration *prometheus.HistogramVec
	queueDepth     prometheus.Gauge
}

// New registers all collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batchItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_batch_items_total",
				Help: "Batch items processed, by batch kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_rendition_dispatches_total",
				Help: "Rendition dispatch attempts, by outcome",
			},
			[]string{"outcome"},
		),
		agentJobCancel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_agent_job_cancels_total",
				Help: "Agent job cancel requests, by outcome",
			},
			[]string{"outcome"},
		),
		workerJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_worker_jobs_total",
				Help: "Rendition jobs finished by the worker, by final status",
			},
			[]string{"status"},
		),
		encodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "media_encode_duration_seconds",
				Help:    "Wall-clock duration of encoder tasks",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"kind", "outcome"},
		),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "media_worker_queue_depth",
			Help: "Rendition job ids waiting across all priority lanes",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.batchItems,
		m.dispatches,
		m.agentJobCancel,
		m.workerJobs,
		m.encodeDuration,
		m.queueDepth,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) BatchItem(kind, outcome string) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Dispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AgentJobCancel(outcome string) {
	if m == nil {
		return
	}
	m.agentJobCancel.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WorkerJob(status string) {
	if m == nil {
		return
	}
	m.workerJobs.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveEncode(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.encodeDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
