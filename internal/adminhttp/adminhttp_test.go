package adminhttp

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
)

type stubSource struct {
	stats  prefixcache.Stats
	uptime time.Duration
}

func (s stubSource) Stats() prefixcache.Stats { return s.stats }
func (s stubSource) Uptime() time.Duration    { return s.uptime }

func TestServer_HealthzReturnsOK(t *testing.T) {
	s := New("127.0.0.1:0", prometheus.NewRegistry(), stubSource{}, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_StatuszReportsCacheStats(t *testing.T) {
	s := New("127.0.0.1:0", prometheus.NewRegistry(), stubSource{
		stats:  prefixcache.Stats{BucketCount: 3, Requests: 10, Hits: 7, Misses: 3},
		uptime: 5 * time.Second,
	}, nil)

	req := httptest.NewRequest("GET", "/statusz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bucket_count"`)
}

func TestServer_MetricsExposesPrometheusFormat(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := New("127.0.0.1:0", registry, stubSource{}, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
}
