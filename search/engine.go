package search

import (
	"context"
	"time"

	"threatshare/core"
	"threatshare/metrics"

	"go.uber.org/zap"
)

// Store is the storage collaborator. Find and Count are separate calls and
// are not atomic: under concurrent writes the total may briefly disagree
// with the returned page.
type Store interface {
	FindIOCs(ctx context.Context, pred Predicate, sort SortSpec, skip, limit int64) ([]*core.IOC, error)
	CountIOCs(ctx context.Context, pred Predicate) (int64, error)
}

// Cache is the result cache collaborator
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Config tunes the engine
type Config struct {
	CacheTTL     time.Duration
	QueryTimeout time.Duration
	ExportLimit  int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		CacheTTL:     5 * time.Minute,
		QueryTimeout: 10 * time.Second,
		ExportLimit:  1000,
	}
}

// Response is a page of formatted search results
type Response struct {
	Results    []Result   `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// Engine runs searches: normalize, consult the cache, query storage,
// format and paginate.
type Engine struct {
	store  Store
	cache  Cache
	cfg    Config
	logger *zap.SugaredLogger
}

// NewEngine creates a search engine. cache may be nil to disable caching.
func NewEngine(store Store, cache Cache, cfg Config, logger *zap.SugaredLogger) *Engine {
	defaults := DefaultConfig()
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaults.QueryTimeout
	}
	if cfg.ExportLimit <= 0 {
		cfg.ExportLimit = defaults.ExportLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	return &Engine{store: store, cache: cache, cfg: cfg, logger: logger}
}

// Search normalizes raw parameters and returns one page of results
func (e *Engine) Search(ctx context.Context, raw RawParams, includeSensitive bool) (*Response, error) {
	f, err := Normalize(raw)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	return e.SearchFilter(ctx, f, includeSensitive)
}

// SearchFilter returns one page of results for an already normalized filter
func (e *Engine) SearchFilter(ctx context.Context, f Filter, includeSensitive bool) (*Response, error) {
	return e.searchPredicate(ctx, f, BuildQuery(f), includeSensitive)
}

// SearchWhere pages through records matching pred, using only the paging
// and sort fields of f. It is not cached.
func (e *Engine) SearchWhere(ctx context.Context, f Filter, pred Predicate, includeSensitive bool) (*Response, error) {
	start := time.Now()
	resp, err := e.query(ctx, f, pred, includeSensitive)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("storage_error").Inc()
		return nil, err
	}
	metrics.SearchesTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.WithLabelValues("storage").Observe(time.Since(start).Seconds())
	return resp, nil
}

func (e *Engine) searchPredicate(ctx context.Context, f Filter, pred Predicate, includeSensitive bool) (*Response, error) {
	start := time.Now()
	key := e.cacheKey(f, includeSensitive)

	if e.cache != nil {
		var cached Response
		found, err := e.cache.Get(ctx, key, &cached)
		if err != nil {
			// Storage stays authoritative; the failure is counted by the cache tier
			e.logger.Warnw("Search cache lookup failed, querying storage", "key", key, "error", err)
		}
		if found {
			cached.restore()
			metrics.SearchesTotal.WithLabelValues("cache_hit").Inc()
			metrics.SearchDuration.WithLabelValues("cache").Observe(time.Since(start).Seconds())
			return &cached, nil
		}
	}

	resp, err := e.query(ctx, f, pred, includeSensitive)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("storage_error").Inc()
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, resp, e.cfg.CacheTTL); err != nil {
			e.logger.Warnw("Failed to cache search results", "key", key, "error", err)
		}
	}

	metrics.SearchesTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.WithLabelValues("storage").Observe(time.Since(start).Seconds())
	return resp, nil
}

func (e *Engine) query(ctx context.Context, f Filter, pred Predicate, includeSensitive bool) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	sortSpec := ResolveSort(f.SortBy, f.SortOrder)
	iocs, err := e.store.FindIOCs(ctx, pred, sortSpec, Offset(f.Page, f.Limit), int64(f.Limit))
	if err != nil {
		return nil, core.NewStorageError("find", err)
	}
	total, err := e.store.CountIOCs(ctx, pred)
	if err != nil {
		return nil, core.NewStorageError("count", err)
	}

	return &Response{
		Results:    FormatResults(iocs, includeSensitive),
		Pagination: Paginate(f.Page, f.Limit, total),
	}, nil
}

// Export normalizes raw parameters, ignoring paging, and returns up to
// the configured export limit of formatted results with the requested format.
func (e *Engine) Export(ctx context.Context, raw RawParams, includeSensitive bool) ([]Result, ExportFormat, error) {
	format, err := ParseExportFormat(Sanitize(raw["format"]))
	if err != nil {
		return nil, "", err
	}

	filterParams := make(RawParams, len(raw))
	for k, v := range raw {
		if k != "page" && k != "limit" && k != "format" {
			filterParams[k] = v
		}
	}
	f, err := Normalize(filterParams)
	if err != nil {
		return nil, "", err
	}
	f.Page = 1
	f.Limit = e.cfg.ExportLimit

	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	iocs, err := e.store.FindIOCs(ctx, BuildQuery(f), ResolveSort(f.SortBy, f.SortOrder), 0, int64(f.Limit))
	if err != nil {
		return nil, "", core.NewStorageError("find", err)
	}

	metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	e.logger.Infow("IOC export prepared", "format", format, "records", len(iocs), "sensitive", includeSensitive)
	return FormatResults(iocs, includeSensitive), format, nil
}

// cacheKey scopes the filter key by sensitivity so redacted and full
// results never share an entry.
func (e *Engine) cacheKey(f Filter, includeSensitive bool) string {
	fields := filterFields(f)
	if includeSensitive {
		fields["sensitive"] = "true"
	}
	return CacheKeyFromMap(fields)
}

// restore undoes codec artifacts of a cached response: nil slices and
// timestamps decoded into the local zone.
func (r *Response) restore() {
	if r.Results == nil {
		r.Results = []Result{}
	}
	for i := range r.Results {
		res := &r.Results[i]
		if res.Tags == nil {
			res.Tags = []string{}
		}
		res.CreatedAt = res.CreatedAt.UTC()
		res.UpdatedAt = res.UpdatedAt.UTC()
		if res.FirstSeen != nil {
			t := res.FirstSeen.UTC()
			res.FirstSeen = &t
		}
		if res.LastSeen != nil {
			t := res.LastSeen.UTC()
			res.LastSeen = &t
		}
	}
}
