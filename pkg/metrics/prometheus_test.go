package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordsOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry("travel", reg)

	m.RecordHTTPRequest("GET", "/api/offers", 200, 10*time.Millisecond)
	m.ObserveStore("bookings", "get", time.Now(), nil)
	m.ObserveStore("bookings", "get", time.Now(), errors.New("down"))
	m.SubscriptionOpened()
	m.SubscriptionOpened()
	m.SubscriptionClosed()
	m.RecordNotification("booking_confirmed", "SENT")
	m.RecordJobRun("alert_expiry", nil)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/offers", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSubscriptions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("booking_confirmed", "SENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("alert_expiry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreOperations))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveStore("c", "op", time.Now(), nil)
		m.SubscriptionOpened()
		m.SubscriptionClosed()
		m.RecordNotification("k", "s")
		m.RecordJobRun("j", nil)
		m.RecordCacheLookup(true)
	})
}
