package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records inbound mutation events and the delivery channels they fan out to.
type WebhookMetrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	delivery *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mutation_events_total",
		Help: "Mutation events received, by table, op and outcome.",
	}, []string{"table", "op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mutation_event_duration_seconds",
		Help:    "Time spent dispatching a mutation event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
	delivery := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_delivery_total",
		Help: "Notification delivery attempts, by channel and outcome.",
	}, []string{"channel", "outcome"})
	reg.MustRegister(events, duration, delivery)
	return &WebhookMetrics{events: events, duration: duration, delivery: delivery}
}

// ObserveEvent counts one dispatched event and records how long it took.
func (m *WebhookMetrics) ObserveEvent(table, op, outcome string, elapsed time.Duration) {
	if m == nil || m.events == nil {
		return
	}
	table = normalizeLabel(table)
	m.events.WithLabelValues(table, normalizeLabel(op), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(table).Observe(elapsed.Seconds())
}

// ObserveDelivery counts one channel send.
func (m *WebhookMetrics) ObserveDelivery(channel, outcome string) {
	if m == nil || m.delivery == nil {
		return
	}
	m.delivery.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}
