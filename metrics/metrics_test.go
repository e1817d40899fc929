package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rayhandestian/quickbites/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry(), nil)

	m.ObserveEvent("order.created")
	m.ObserveEvent("order.created")
	m.ObserveOutcome("order_created", "sent")
	m.ObserveOutcome("status_changed", "unmapped_status")
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveDelivery("fcm", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrderEventsTotal.WithLabelValues("order.created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("order_created", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("status_changed", "unmapped_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UserTokenCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UserTokenCacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PushDeliveryDuration))
}

func TestMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg, nil)

	assert.Panics(t, func() { metrics.New(reg, nil) })
}
