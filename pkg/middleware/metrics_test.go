package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric returns the first metric from c whose labels include all of
// labels, or nil.
func collectMetric(c prometheus.Collector, labels map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		if hasLabels(d, labels) {
			return d
		}
	}
	return nil
}

func hasLabels(d *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lp := range d.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-route-svc"))
	r.Post("/api/favorites/{movieId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/favorites/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	m := collectMetric(httpRequestsTotal, map[string]string{
		"service": "metrics-route-svc", "method": "POST", "path": "/api/favorites/{movieId}", "status": "200",
	})
	require.NotNil(t, m)
	assert.Equal(t, float64(3), m.GetCounter().GetValue())

	h := collectMetric(httpRequestDuration, map[string]string{"service": "metrics-route-svc"})
	require.NotNil(t, h)
	assert.Equal(t, uint64(3), h.GetHistogram().GetSampleCount())
}

func TestPrometheusMetrics_WithoutChi(t *testing.T) {
	h := PrometheusMetrics("metrics-plain-svc")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	m := collectMetric(httpRequestsTotal, map[string]string{
		"service": "metrics-plain-svc", "path": "unknown", "status": "401",
	})
	assert.NotNil(t, m)
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	seen := float64(-1)
	h := PrometheusMetrics("metrics-inflight-svc")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m := collectMetric(httpRequestsInFlight, map[string]string{"service": "metrics-inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(1), seen)
	after := collectMetric(httpRequestsInFlight, map[string]string{"service": "metrics-inflight-svc"})
	require.NotNil(t, after)
	assert.Equal(t, float64(0), after.GetGauge().GetValue())
}

// --- statusRecorder delegation ---

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

type hijackRecorder struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

type bareWriter struct{ header http.Header }

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int)             {}

func TestStatusRecorder_Delegation(t *testing.T) {
	f := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	(&statusRecorder{ResponseWriter: f}).Flush()
	assert.True(t, f.flushed)

	hj := &hijackRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := (&statusRecorder{ResponseWriter: hj}).Hijack()
	assert.NoError(t, err)
	assert.True(t, hj.hijacked)

	bare := &statusRecorder{ResponseWriter: &bareWriter{}}
	bare.Flush()
	_, _, err = bare.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
	assert.NotNil(t, bare.Unwrap())
}
