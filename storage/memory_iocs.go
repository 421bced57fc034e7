package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"threatshare/core"
	"threatshare/search"

	"go.uber.org/zap"
)

// MemoryIOCStorage keeps IOCs in process memory. It backs the CLI demo
// mode and tests; contents are lost on restart.
type MemoryIOCStorage struct {
	mu     sync.RWMutex
	byID   map[string]*core.IOC
	byKey  map[string]string
	logger *zap.SugaredLogger
}

// NewMemoryIOCStorage creates an empty in-memory store
func NewMemoryIOCStorage(logger *zap.SugaredLogger) *MemoryIOCStorage {
	return &MemoryIOCStorage{
		byID:   make(map[string]*core.IOC),
		byKey:  make(map[string]string),
		logger: logger,
	}
}

func uniqueKey(t core.IOCType, value string) string {
	return string(t) + "\x00" + value
}

// FindIOCs returns one page of records matching pred
func (m *MemoryIOCStorage) FindIOCs(ctx context.Context, pred search.Predicate, spec search.SortSpec, skip, limit int64) ([]*core.IOC, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	matched := make([]*core.IOC, 0, len(m.byID))
	for _, ioc := range m.byID {
		if pred.Matches(ioc) {
			matched = append(matched, copyIOC(ioc))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return spec.Less(matched[i], matched[j])
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []*core.IOC{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountIOCs counts the records matching pred
func (m *MemoryIOCStorage) CountIOCs(ctx context.Context, pred search.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, ioc := range m.byID {
		if pred.Matches(ioc) {
			n++
		}
	}
	return n, nil
}

// CreateIOC stores a new IOC
func (m *MemoryIOCStorage) CreateIOC(ctx context.Context, ioc *core.IOC) error {
	if err := ioc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := uniqueKey(ioc.Type, ioc.Value)
	if _, exists := m.byKey[key]; exists {
		return ErrDuplicateIOC
	}
	if _, exists := m.byID[ioc.ID]; exists {
		return ErrDuplicateIOC
	}
	m.byID[ioc.ID] = copyIOC(ioc)
	m.byKey[key] = ioc.ID

	m.logger.Debugw("IOC created", "ioc_id", ioc.ID, "type", ioc.Type)
	return nil
}

// GetIOC retrieves an IOC by ID
func (m *MemoryIOCStorage) GetIOC(ctx context.Context, id string) (*core.IOC, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ioc, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIOC(ioc), nil
}

// UpdateIOCStatus sets the lifecycle status of an IOC
func (m *MemoryIOCStorage) UpdateIOCStatus(ctx context.Context, id string, status core.IOCStatus) error {
	if !status.IsValid() {
		return core.NewValidationError("status", "unknown IOC status %q", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ioc, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	ioc.Status = status
	ioc.UpdatedAt = time.Now().UTC()
	return nil
}

// IncrementVerification adds one verification to an IOC and returns the updated record
func (m *MemoryIOCStorage) IncrementVerification(ctx context.Context, id string) (*core.IOC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ioc, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	ioc.VerificationCount++
	ioc.UpdatedAt = time.Now().UTC()
	return copyIOC(ioc), nil
}

// PopularTags returns the most used tags, most frequent first
func (m *MemoryIOCStorage) PopularTags(ctx context.Context, limit int) ([]TagCount, error) {
	if limit <= 0 {
		limit = PopularTagsLimit
	}
	m.mu.RLock()
	counts := map[string]int64{}
	for _, ioc := range m.byID {
		for _, tag := range ioc.Tags {
			counts[tag]++
		}
	}
	m.mu.RUnlock()

	tags := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		tags = append(tags, TagCount{Name: name, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// DashboardStats summarizes the store for the analytics dashboard
func (m *MemoryIOCStorage) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	m.mu.RLock()
	all := make([]*core.IOC, 0, len(m.byID))
	for _, ioc := range m.byID {
		all = append(all, copyIOC(ioc))
	}
	m.mu.RUnlock()

	byType := map[string]int64{}
	byLevel := map[string]int64{}
	byDay := map[DayKey]int64{}
	for _, ioc := range all {
		byType[string(ioc.Type)]++
		byLevel[string(ioc.ThreatLevel)]++
		y, mo, d := ioc.CreatedAt.UTC().Date()
		byDay[DayKey{Year: y, Month: int(mo), Day: d}]++
	}

	newest := search.ResolveSort(search.SortByCreatedAt, search.SortDesc)
	sort.SliceStable(all, func(i, j int) bool { return newest.Less(all[i], all[j]) })
	recent := make([]RecentSubmission, 0, DashboardRecentLimit)
	for _, ioc := range all {
		if len(recent) == DashboardRecentLimit {
			break
		}
		recent = append(recent, RecentSubmission{
			ID:          ioc.ID,
			Type:        ioc.Type,
			Value:       ioc.Value,
			ThreatLevel: ioc.ThreatLevel,
			CreatedAt:   ioc.CreatedAt,
		})
	}

	days := make([]DailyCount, 0, len(byDay))
	for k, n := range byDay {
		days = append(days, DailyCount{ID: k, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].ID.before(days[j].ID) })
	if len(days) > DashboardDaysLimit {
		days = days[len(days)-DashboardDaysLimit:]
	}

	return &DashboardStats{
		TotalIOCs:           int64(len(all)),
		IOCsByType:          sortedGroups(byType),
		IOCsByThreatLevel:   sortedGroups(byLevel),
		RecentSubmissions:   recent,
		SubmissionsOverTime: days,
	}, nil
}

// HealthCheck always succeeds
func (m *MemoryIOCStorage) HealthCheck(ctx context.Context) error {
	return nil
}

// Len returns the number of stored IOCs
func (m *MemoryIOCStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (k DayKey) before(other DayKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

func sortedGroups(counts map[string]int64) []GroupCount {
	groups := make([]GroupCount, 0, len(counts))
	for id, n := range counts {
		groups = append(groups, GroupCount{ID: id, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].ID < groups[j].ID
	})
	return groups
}

// copyIOC returns a copy that shares no mutable state with the original
func copyIOC(ioc *core.IOC) *core.IOC {
	c := *ioc
	c.Tags = append([]string{}, ioc.Tags...)
	if ioc.FirstSeen != nil {
		t := *ioc.FirstSeen
		c.FirstSeen = &t
	}
	if ioc.LastSeen != nil {
		t := *ioc.LastSeen
		c.LastSeen = &t
	}
	return &c
}
