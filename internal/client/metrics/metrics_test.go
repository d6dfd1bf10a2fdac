package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Transaction("deposit", "settled")
	m.Transaction("deposit", "settled")
	m.Transaction("withdraw", "failed")
	m.Aggregation("refresh", "ok")
	m.Degraded("nominees")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("deposit", "settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("withdraw", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aggregations.WithLabelValues("refresh", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degraded.WithLabelValues("nominees")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transaction("deposit", "settled")
		m.Confirmation("deposit", time.Second)
		m.Aggregation("first", "ok")
		m.Degraded("name")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Confirmation("alive", 3*time.Second)
	m.Transaction("alive", "settled")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `afterlife_client_transactions_total{action="alive",outcome="settled"} 1`))
	assert.Contains(t, body, "afterlife_client_confirmation_seconds_count")
}
