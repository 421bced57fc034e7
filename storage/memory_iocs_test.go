package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"threatshare/core"
	"threatshare/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMemoryStore(t *testing.T) *MemoryIOCStorage {
	return NewMemoryIOCStorage(zaptest.NewLogger(t).Sugar())
}

func seedIOC(t *testing.T, s IOCStorage, value string, level core.ThreatLevel, confidence int, created time.Time, tags ...string) *core.IOC {
	t.Helper()
	ioc := core.NewIOC(core.IOCTypeDomain, value, level, confidence)
	ioc.CreatedAt = created
	ioc.UpdatedAt = created
	if tags != nil {
		ioc.Tags = tags
	}
	require.NoError(t, s.CreateIOC(context.Background(), ioc))
	return ioc
}

func TestMemoryIOCStorage_CreateAndGet(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	ioc := seedIOC(t, s, "evil.example.com", core.ThreatLevelHigh, 80, time.Now().UTC(), "phishing")

	got, err := s.GetIOC(ctx, ioc.ID)
	require.NoError(t, err)
	assert.Equal(t, ioc.Value, got.Value)

	got.Tags[0] = "mutated"
	again, err := s.GetIOC(ctx, ioc.ID)
	require.NoError(t, err)
	assert.Equal(t, "phishing", again.Tags[0], "returned records must not alias stored state")

	_, err = s.GetIOC(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetIOC(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMemoryIOCStorage_DuplicateTypeValue(t *testing.T) {
	s := newMemoryStore(t)
	seedIOC(t, s, "evil.example.com", core.ThreatLevelHigh, 80, time.Now().UTC())

	dup := core.NewIOC(core.IOCTypeDomain, "EVIL.example.com", core.ThreatLevelLow, 10)
	assert.ErrorIs(t, s.CreateIOC(context.Background(), dup), ErrDuplicateIOC)

	other := core.NewIOC(core.IOCTypeURL, "https://evil.example.com/", core.ThreatLevelLow, 10)
	assert.NoError(t, s.CreateIOC(context.Background(), other), "same value under another type is distinct")
}

func TestMemoryIOCStorage_FindPagesAndSorts(t *testing.T) {
	s := newMemoryStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedIOC(t, s, fmt.Sprintf("host%02d.example.com", i), core.ThreatLevelMedium, i, base.Add(time.Duration(i)*time.Hour))
	}

	spec := search.ResolveSort(search.SortByCreatedAt, search.SortDesc)
	page1, err := s.FindIOCs(context.Background(), search.Predicate{}, spec, 0, 10)
	require.NoError(t, err)
	page3, err := s.FindIOCs(context.Background(), search.Predicate{}, spec, 20, 10)
	require.NoError(t, err)

	require.Len(t, page1, 10)
	require.Len(t, page3, 5)
	assert.Equal(t, "host24.example.com", page1[0].Value)
	assert.Equal(t, "host00.example.com", page3[4].Value)

	beyond, err := s.FindIOCs(context.Background(), search.Predicate{}, spec, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryIOCStorage_FindOutOfRangeSkip(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedIOC(t, s, fmt.Sprintf("skip%d.example.com", i), core.ThreatLevelLow, 10, base.Add(time.Duration(i)*time.Hour))
	}
	sortSpec := search.ResolveSort("", "")

	got, err := s.FindIOCs(ctx, search.Predicate{}, sortSpec, search.Offset(100000000000000000, 100), 100)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.FindIOCs(ctx, search.Predicate{}, sortSpec, -8446744073709551716, 100)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemoryIOCStorage_FindByThreatSeverity(t *testing.T) {
	s := newMemoryStore(t)
	now := time.Now().UTC()
	seedIOC(t, s, "low.example.com", core.ThreatLevelLow, 50, now)
	seedIOC(t, s, "critical.example.com", core.ThreatLevelCritical, 50, now)
	seedIOC(t, s, "medium.example.com", core.ThreatLevelMedium, 50, now)
	seedIOC(t, s, "high.example.com", core.ThreatLevelHigh, 50, now)

	spec := search.ResolveSort(search.SortByThreatLevel, search.SortDesc)
	iocs, err := s.FindIOCs(context.Background(), search.Predicate{}, spec, 0, 10)
	require.NoError(t, err)

	var levels []core.ThreatLevel
	for _, ioc := range iocs {
		levels = append(levels, ioc.ThreatLevel)
	}
	assert.Equal(t, []core.ThreatLevel{
		core.ThreatLevelCritical, core.ThreatLevelHigh, core.ThreatLevelMedium, core.ThreatLevelLow,
	}, levels)
}

func TestMemoryIOCStorage_CountMatchesFind(t *testing.T) {
	s := newMemoryStore(t)
	now := time.Now().UTC()
	seedIOC(t, s, "a.example.com", core.ThreatLevelHigh, 90, now, "malware")
	seedIOC(t, s, "b.example.com", core.ThreatLevelHigh, 40, now, "phishing")
	seedIOC(t, s, "c.example.com", core.ThreatLevelLow, 95, now, "malware")

	f := search.DefaultFilter()
	f.ThreatLevel = core.ThreatLevelHigh
	minConfidence := 50
	f.ConfidenceMin = &minConfidence
	pred := search.BuildQuery(f)

	n, err := s.CountIOCs(context.Background(), pred)
	require.NoError(t, err)
	iocs, err := s.FindIOCs(context.Background(), pred, search.ResolveSort("", ""), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), n)
	require.Len(t, iocs, 1)
	assert.Equal(t, "a.example.com", iocs[0].Value)
}

func TestMemoryIOCStorage_CanceledContext(t *testing.T) {
	s := newMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindIOCs(ctx, search.Predicate{}, nil, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.CountIOCs(ctx, search.Predicate{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryIOCStorage_StatusAndVerification(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	ioc := seedIOC(t, s, "evil.example.com", core.ThreatLevelHigh, 80, time.Now().UTC())

	require.NoError(t, s.UpdateIOCStatus(ctx, ioc.ID, core.IOCStatusConfirmed))
	assert.ErrorIs(t, s.UpdateIOCStatus(ctx, "missing", core.IOCStatusConfirmed), ErrNotFound)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementVerification(ctx, ioc.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetIOC(ctx, ioc.ID)
	require.NoError(t, err)
	assert.Equal(t, core.IOCStatusConfirmed, got.Status)
	assert.Equal(t, 20, got.VerificationCount)

	_, err = s.IncrementVerification(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryIOCStorage_PopularTags(t *testing.T) {
	s := newMemoryStore(t)
	now := time.Now().UTC()
	seedIOC(t, s, "a.example.com", core.ThreatLevelHigh, 90, now, "malware", "c2")
	seedIOC(t, s, "b.example.com", core.ThreatLevelHigh, 40, now, "malware")
	seedIOC(t, s, "c.example.com", core.ThreatLevelLow, 95, now, "phishing")

	tags, err := s.PopularTags(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "malware", Count: 2}, {Name: "c2", Count: 1}}, tags)
}

func TestMemoryIOCStorage_DashboardStats(t *testing.T) {
	s := newMemoryStore(t)
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	seedIOC(t, s, "a.example.com", core.ThreatLevelHigh, 90, day1)
	seedIOC(t, s, "b.example.com", core.ThreatLevelHigh, 40, day2)
	seedIOC(t, s, "c.example.com", core.ThreatLevelLow, 95, day2.Add(time.Hour))

	stats, err := s.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalIOCs)
	assert.Equal(t, []GroupCount{{ID: "domain", Count: 3}}, stats.IOCsByType)
	assert.Equal(t, []GroupCount{{ID: "high", Count: 2}, {ID: "low", Count: 1}}, stats.IOCsByThreatLevel)
	require.Len(t, stats.RecentSubmissions, 3)
	assert.Equal(t, "c.example.com", stats.RecentSubmissions[0].Value)
	assert.Equal(t, []DailyCount{
		{ID: DayKey{Year: 2024, Month: 3, Day: 1}, Count: 1},
		{ID: DayKey{Year: 2024, Month: 3, Day: 2}, Count: 2},
	}, stats.SubmissionsOverTime)
}

func TestMemoryIOCStorage_DashboardKeepsLatestDays(t *testing.T) {
	s := newMemoryStore(t)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < DashboardDaysLimit+5; i++ {
		seedIOC(t, s, fmt.Sprintf("d%02d.example.com", i), core.ThreatLevelLow, 10, start.AddDate(0, 0, i))
	}

	stats, err := s.DashboardStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.SubmissionsOverTime, DashboardDaysLimit)
	assert.Equal(t, DayKey{Year: 2024, Month: 1, Day: 6}, stats.SubmissionsOverTime[0].ID)
	assert.Len(t, stats.RecentSubmissions, DashboardRecentLimit)
}
