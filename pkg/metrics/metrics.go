package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "walletsync"

// Metrics holds the counters shared by ingress, reconciler and fan-out.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	EventsIngested      *prometheus.CounterVec
	TranslationFailures *prometheus.CounterVec
	EventsApplied       *prometheus.CounterVec
	StaleEvents         *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	NotificationsDrop   *prometheus.CounterVec
	Subscribers         prometheus.Gauge
	IngressQueueDepth   prometheus.GaugeFunc
	HTTPRequests        *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

// New creates the counters and registers them with reg when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingress",
			Name:      "events_total",
			Help:      "Native callbacks translated into wallet events.",
		}, []string{"kind"}),
		TranslationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingress",
			Name:      "translation_failures_total",
			Help:      "Native callbacks dropped because the payload could not be translated.",
		}, []string{"callback"}),
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "events_applied_total",
			Help:      "Events applied to wallet state.",
		}, []string{"kind"}),
		StaleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "stale_events_total",
			Help:      "Events ignored because they would move a transaction backwards.",
		}, []string{"kind"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "notifications_total",
			Help:      "Notifications delivered to subscribers.",
		}, []string{"kind"}),
		NotificationsDrop: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped by a full subscriber queue.",
		}, []string{"policy"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "subscribers",
			Help:      "Currently registered subscribers.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route pattern.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.EventsIngested,
			m.TranslationFailures,
			m.EventsApplied,
			m.StaleEvents,
			m.NotificationsSent,
			m.NotificationsDrop,
			m.Subscribers,
			m.HTTPRequests,
			m.HTTPLatency,
		)
	}
	return m
}

// RegisterQueueDepth exposes a gauge reading the current ingress backlog.
func (m *Metrics) RegisterQueueDepth(reg prometheus.Registerer, depth func() int) {
	if m == nil || reg == nil {
		return
	}
	m.IngressQueueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingress",
		Name:      "queue_depth",
		Help:      "Events waiting for the reconciler.",
	}, func() float64 { return float64(depth()) })
	reg.MustRegister(m.IngressQueueDepth)
}

func (m *Metrics) Ingested(kind string) {
	if m != nil {
		m.EventsIngested.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) TranslationFailed(callback string) {
	if m != nil {
		m.TranslationFailures.WithLabelValues(callback).Inc()
	}
}

func (m *Metrics) Applied(kind string) {
	if m != nil {
		m.EventsApplied.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Stale(kind string) {
	if m != nil {
		m.StaleEvents.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Delivered(kind string) {
	if m != nil {
		m.NotificationsSent.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Dropped(policy string) {
	if m != nil {
		m.NotificationsDrop.WithLabelValues(policy).Inc()
	}
}

func (m *Metrics) SubscriberAdded() {
	if m != nil {
		m.Subscribers.Inc()
	}
}

func (m *Metrics) SubscriberRemoved() {
	if m != nil {
		m.Subscribers.Dec()
	}
}

// Request records one served HTTP request.
func (m *Metrics) Request(method, route string, status int, latency time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPLatency.WithLabelValues(method, route).Observe(latency.Seconds())
	}
}
