package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	awspkg "github.com/rayhandestian/quickbites/pkg/aws"
)

// Outcome labels that count as a successful send or a failed send in
// CloudWatch. Every other outcome is reported as skipped.
const (
	outcomeSent           = "sent"
	outcomeDeliveryFailed = "delivery_failed"
)

// Metrics holds the Prometheus collectors of the notifier and optionally
// mirrors the notification counters to CloudWatch.
type Metrics struct {
	OrderEventsTotal      *prometheus.CounterVec
	NotificationsTotal    *prometheus.CounterVec
	PushDeliveryDuration  *prometheus.HistogramVec
	UserTokenCacheLookups *prometheus.CounterVec

	cloudWatch *awspkg.MetricsClient
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, cloudWatch *awspkg.MetricsClient) *Metrics {
	m := &Metrics{
		OrderEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_events_total",
				Help: "Total number of order change events received",
			},
			[]string{"event_type"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_notifications_total",
				Help: "Order change events by notification kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		PushDeliveryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "push_delivery_duration_seconds",
				Help:    "Duration of push transport calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		UserTokenCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_token_cache_total",
				Help: "Device token cache lookups by result",
			},
			[]string{"result"},
		),
		cloudWatch: cloudWatch,
	}

	reg.MustRegister(
		m.OrderEventsTotal,
		m.NotificationsTotal,
		m.PushDeliveryDuration,
		m.UserTokenCacheLookups,
	)
	return m
}

func (m *Metrics) ObserveEvent(eventType string) {
	m.OrderEventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) ObserveOutcome(kind, outcome string) {
	m.NotificationsTotal.WithLabelValues(kind, outcome).Inc()

	if m.cloudWatch == nil || !m.cloudWatch.IsEnabled() {
		return
	}
	name := awspkg.MetricNotificationsSkipped
	switch outcome {
	case outcomeSent:
		name = awspkg.MetricNotificationsSent
	case outcomeDeliveryFailed:
		name = awspkg.MetricNotificationsFailed
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.cloudWatch.RecordCount(ctx, name, map[string]string{"Kind": kind})
	}()
}

func (m *Metrics) ObserveDelivery(provider string, d time.Duration) {
	m.PushDeliveryDuration.WithLabelValues(provider).Observe(d.Seconds())

	if m.cloudWatch == nil || !m.cloudWatch.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.cloudWatch.RecordLatency(ctx, awspkg.MetricPushLatency, d, map[string]string{"Provider": provider})
	}()
}

// ObserveCacheLookup matches repository.CacheObserver.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.UserTokenCacheLookups.WithLabelValues(result).Inc()
}
