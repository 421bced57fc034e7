package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threatshare/core"
	"threatshare/search"
	"threatshare/service"
	"threatshare/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubStats struct {
	healthErr error
	tagsErr   error
}

func (s *stubStats) PopularTags(context.Context, int) ([]storage.TagCount, error) {
	return nil, s.tagsErr
}

func (s *stubStats) DashboardStats(context.Context) (*storage.DashboardStats, error) {
	return nil, errors.New("aggregate failed: mongodb://admin:pw@10.0.0.5:27017")
}

func (s *stubStats) HealthCheck(context.Context) error {
	return s.healthErr
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newStubAPI(t *testing.T, stats StatsStorer, cache CachePinger) *API {
	logger := zaptest.NewLogger(t).Sugar()
	store := storage.NewMemoryIOCStorage(logger)
	engine := search.NewEngine(store, nil, search.DefaultConfig(), logger)
	return NewAPI(newTestConfig(false), engine, service.NewIOCService(store, nil, logger), stats, cache, logger)
}

func TestGetPopularTags(t *testing.T) {
	ts := setupTestAPI(t, false)
	ts.seed(t, core.IOCTypeDomain, "a.example.com", core.ThreatLevelHigh, 80, 0, func(ioc *core.IOC) {
		ioc.Tags = []string{"phishing", "apt"}
	})
	ts.seed(t, core.IOCTypeDomain, "b.example.com", core.ThreatLevelHigh, 80, 0, func(ioc *core.IOC) {
		ioc.Tags = []string{"phishing"}
	})

	w := ts.do(t, "GET", "/api/v1/tags/popular", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	tags := decodeData[[]storage.TagCount](t, w)
	require.Len(t, tags, 2)
	assert.Equal(t, storage.TagCount{Name: "phishing", Count: 2}, tags[0])
	assert.Equal(t, storage.TagCount{Name: "apt", Count: 1}, tags[1])
}

func TestGetDashboard(t *testing.T) {
	ts := setupTestAPI(t, false)
	ts.seed(t, core.IOCTypeDomain, "a.example.com", core.ThreatLevelHigh, 80, 0)
	ts.seed(t, core.IOCTypeDomain, "b.example.com", core.ThreatLevelLow, 80, 48*time.Hour)
	ts.seed(t, core.IOCTypeIP, "198.51.100.7", core.ThreatLevelHigh, 80, 49*time.Hour)

	w := ts.do(t, "GET", "/api/v1/analytics/dashboard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	stats := decodeData[storage.DashboardStats](t, w)
	assert.Equal(t, int64(3), stats.TotalIOCs)
	assert.Len(t, stats.IOCsByType, 2)
	assert.Len(t, stats.IOCsByThreatLevel, 2)
	require.Len(t, stats.RecentSubmissions, 3)
	assert.Equal(t, "a.example.com", stats.RecentSubmissions[0].Value)
	require.Len(t, stats.SubmissionsOverTime, 2)
	assert.Equal(t, int64(2), stats.SubmissionsOverTime[0].Count)
	assert.Equal(t, 30, stats.SubmissionsOverTime[0].ID.Day)
}

func TestGetDashboard_StorageErrorIsSanitized(t *testing.T) {
	a := newStubAPI(t, &stubStats{}, nil)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/analytics/dashboard", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, ErrCodeInternal, resp.Error)
	assert.NotContains(t, w.Body.String(), "mongodb://")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestGetSearchFilters_TagFailureTolerated(t *testing.T) {
	a := newStubAPI(t, &stubStats{tagsErr: errors.New("boom")}, nil)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/search/filters", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[SearchFiltersResponse](t, w)
	assert.Empty(t, resp.PopularTags)
	assert.NotEmpty(t, resp.Types)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		stats      *stubStats
		cache      CachePinger
		wantCode   int
		wantHealth HealthResponse
	}{
		{
			name:       "all up",
			stats:      &stubStats{},
			cache:      stubPinger{},
			wantCode:   http.StatusOK,
			wantHealth: HealthResponse{Status: "healthy", Storage: "up", Cache: "up"},
		},
		{
			name:       "no shared cache",
			stats:      &stubStats{},
			wantCode:   http.StatusOK,
			wantHealth: HealthResponse{Status: "healthy", Storage: "up", Cache: "disabled"},
		},
		{
			name:       "cache down",
			stats:      &stubStats{},
			cache:      stubPinger{err: errors.New("redis down")},
			wantCode:   http.StatusOK,
			wantHealth: HealthResponse{Status: "degraded", Storage: "up", Cache: "down"},
		},
		{
			name:       "storage down",
			stats:      &stubStats{healthErr: errors.New("no reachable servers")},
			cache:      stubPinger{},
			wantCode:   http.StatusServiceUnavailable,
			wantHealth: HealthResponse{Status: "unhealthy", Storage: "down", Cache: "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newStubAPI(t, tt.stats, tt.cache)

			w := httptest.NewRecorder()
			a.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			require.Equal(t, tt.wantCode, w.Code)
			var got HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantHealth, got)
		})
	}
}
