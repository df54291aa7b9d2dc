package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveEmbedding(OutcomeOK)
		m.ObserveIngest(1, 2, 3, 4)
		m.ObserveSwap(true)
		m.ObserveSearch(ResultHit, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestObserveEmbedding(t *testing.T) {
	m := New()
	m.ObserveEmbedding(OutcomeOK)
	m.ObserveEmbedding(OutcomeDegraded)
	m.ObserveEmbedding(OutcomeDegraded)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingRequestsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmbeddingRequestsTotal.WithLabelValues(OutcomeDegraded)))
}

func TestObserveIngest(t *testing.T) {
	m := New()
	m.ObserveIngest(3, 1, 2, 10)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.DocumentsIngestedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsSkippedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestFailuresTotal))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.EntriesWrittenTotal))
}

func TestObserveSwapAndSearch(t *testing.T) {
	m := New()
	m.ObserveSwap(true)
	m.ObserveSwap(false)
	m.ObserveSearch(ResultZeroResult, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionSwapsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionSwapsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultZeroResult)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSearch(ResultHit, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rag_search_queries_total"))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
