package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"threatshare/core"
	"threatshare/metrics"
	"threatshare/search"
	"threatshare/storage"

	"go.uber.org/zap"
)

// Lookup limits
const (
	QuickSearchLimit = 20
	ByTypeLimit      = 50
)

// IOCStorage defines the IOC storage operations needed by the service.
// Defined here (consumer package) so tests can mock only what is used.
type IOCStorage interface {
	CreateIOC(ctx context.Context, ioc *core.IOC) error
	GetIOC(ctx context.Context, id string) (*core.IOC, error)
	UpdateIOCStatus(ctx context.Context, id string, status core.IOCStatus) error
	IncrementVerification(ctx context.Context, id string) (*core.IOC, error)
	FindIOCs(ctx context.Context, pred search.Predicate, sort search.SortSpec, skip, limit int64) ([]*core.IOC, error)
}

// CacheInvalidator drops cached search results after a write
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// QuickResult is the minimal projection returned by quick search
type QuickResult struct {
	ID          string           `json:"id"`
	Type        core.IOCType     `json:"type"`
	Value       string           `json:"value"`
	ThreatLevel core.ThreatLevel `json:"threatLevel"`
}

// IOCService handles IOC submission, verification and single record lookups
type IOCService struct {
	store  IOCStorage
	cache  CacheInvalidator
	logger *zap.SugaredLogger
}

// NewIOCService creates an IOC service. cache may be nil.
func NewIOCService(store IOCStorage, cache CacheInvalidator, logger *zap.SugaredLogger) *IOCService {
	return &IOCService{store: store, cache: cache, logger: logger}
}

// Submit validates a submission, stores it and confirms it. username is
// the authenticated caller, empty for unauthenticated requests.
func (s *IOCService) Submit(ctx context.Context, sub *core.IOCSubmission, username string) (*core.IOC, error) {
	if sub == nil {
		return nil, core.NewValidationError("", "submission body is required")
	}
	if err := sub.Validate(); err != nil {
		metrics.IOCsSubmitted.WithLabelValues(typeLabel(sub.Type), "invalid").Inc()
		return nil, err
	}

	ioc := sub.ToIOC(username)
	if err := s.store.CreateIOC(ctx, ioc); err != nil {
		if errors.Is(err, storage.ErrDuplicateIOC) {
			metrics.IOCsSubmitted.WithLabelValues(string(ioc.Type), "duplicate").Inc()
			return nil, err
		}
		if core.IsValidationError(err) {
			metrics.IOCsSubmitted.WithLabelValues(string(ioc.Type), "invalid").Inc()
			return nil, err
		}
		metrics.IOCsSubmitted.WithLabelValues(string(ioc.Type), "error").Inc()
		return nil, core.NewStorageError("create", err)
	}

	if err := s.store.UpdateIOCStatus(ctx, ioc.ID, core.IOCStatusConfirmed); err != nil {
		// The record exists; a later retry of the status change is harmless
		s.logger.Errorw("Failed to confirm submitted IOC", "ioc_id", ioc.ID, "error", err)
	} else {
		ioc.Status = core.IOCStatusConfirmed
	}

	s.invalidate(ctx)
	metrics.IOCsSubmitted.WithLabelValues(string(ioc.Type), "created").Inc()
	s.logger.Infow("IOC submitted",
		"ioc_id", ioc.ID,
		"type", ioc.Type,
		"threat_level", ioc.ThreatLevel,
		"submitter", ioc.DisplaySubmitter(),
	)
	return ioc, nil
}

// Verify records one more independent confirmation of an IOC
func (s *IOCService) Verify(ctx context.Context, id string) (*core.IOC, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("id", "is required")
	}
	ioc, err := s.store.IncrementVerification(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, core.NewStorageError("verify", err)
	}

	s.invalidate(ctx)
	metrics.IOCVerifications.Inc()
	s.logger.Infow("IOC verified", "ioc_id", id, "verification_count", ioc.VerificationCount)
	return ioc, nil
}

// Get returns an IOC by id
func (s *IOCService) Get(ctx context.Context, id string) (*core.IOC, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("id", "is required")
	}
	ioc, err := s.store.GetIOC(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
			return nil, storage.ErrNotFound
		}
		return nil, core.NewStorageError("get", err)
	}
	return ioc, nil
}

// GetByValue returns the newest IOC whose stored value equals value under
// any type's normalization, so an uppercase hash finds its stored form.
func (s *IOCService) GetByValue(ctx context.Context, value string) (*core.IOC, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, core.NewValidationError("value", "is required")
	}
	if len(value) > core.MaxIOCValueLength {
		return nil, core.NewValidationError("value", "must be at most %d characters", core.MaxIOCValueLength)
	}

	pred := search.Predicate{Clauses: []search.Clause{{Field: "value", Op: search.OpIn, Value: lookupValues(value)}}}
	iocs, err := s.store.FindIOCs(ctx, pred, search.ResolveSort(search.SortByCreatedAt, search.SortDesc), 0, 1)
	if err != nil {
		return nil, core.NewStorageError("find", err)
	}
	if len(iocs) == 0 {
		return nil, storage.ErrNotFound
	}
	return iocs[0], nil
}

// lookupValues lists value as given followed by each distinct stored form
// it takes under the IOC types it is valid for.
func lookupValues(value string) []string {
	values := []string{value}
	seen := map[string]struct{}{value: {}}
	for _, t := range core.AllIOCTypes {
		if core.ValidateIOCValue(t, value) != nil {
			continue
		}
		v := core.NormalizeIOCValue(t, value)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

// QuickSearch returns up to QuickSearchLimit newest matches of a free-text query
func (s *IOCService) QuickSearch(ctx context.Context, q string) ([]QuickResult, error) {
	q = search.Sanitize(q)
	if err := core.ValidateVar("q", q, fmt.Sprintf("required,max=%d", search.MaxQueryLength)); err != nil {
		return nil, err
	}

	iocs, err := s.store.FindIOCs(ctx, search.TextPredicate(q), search.ResolveSort("", ""), 0, QuickSearchLimit)
	if err != nil {
		return nil, core.NewStorageError("find", err)
	}

	results := make([]QuickResult, 0, len(iocs))
	for _, ioc := range iocs {
		results = append(results, QuickResult{
			ID:          ioc.ID,
			Type:        ioc.Type,
			Value:       ioc.Value,
			ThreatLevel: ioc.ThreatLevel,
		})
	}
	return results, nil
}

func (s *IOCService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warnw("Failed to invalidate search cache", "error", err)
	}
}

// typeLabel keeps metric cardinality bounded for rejected submissions
func typeLabel(t core.IOCType) string {
	if t.IsValid() {
		return string(t)
	}
	return "unknown"
}
