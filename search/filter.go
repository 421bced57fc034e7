package search

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"threatshare/core"
)

// Defaults and bounds for search parameters
const (
	DefaultSortBy    = SortByCreatedAt
	DefaultSortOrder = SortDesc
	DefaultPage      = 1
	DefaultLimit     = 20
	MaxLimit         = 100
	MinQueryLength   = 2
	MaxQueryLength   = 100
)

// Sort keys accepted by the normalizer
const (
	SortByCreatedAt         = "createdAt"
	SortByUpdatedAt         = "updatedAt"
	SortByThreatLevel       = "threatLevel"
	SortByConfidence        = "confidence"
	SortByVerificationCount = "verificationCount"
)

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortKeys lists the accepted sortBy values
var SortKeys = []string{
	SortByCreatedAt, SortByUpdatedAt, SortByThreatLevel, SortByConfidence, SortByVerificationCount,
}

// SortOrders lists the accepted sortOrder values
var SortOrders = []string{SortAsc, SortDesc}

// stripChars are removed from every string parameter before validation
const stripChars = "<>$()"

// RawParams holds unvalidated search parameters keyed by parameter name
type RawParams map[string]string

// ParamsFromValues flattens URL query values. Repeated tags parameters
// are joined with commas; for every other key the first value wins.
func ParamsFromValues(values url.Values) RawParams {
	raw := make(RawParams, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if key == "tags" {
			raw[key] = strings.Join(vals, ",")
			continue
		}
		raw[key] = vals[0]
	}
	return raw
}

// Filter is the validated, typed form of a search request.
// Zero values and nil pointers mean the field is absent.
type Filter struct {
	Query         string
	Type          core.IOCType
	ThreatLevel   core.ThreatLevel
	Tags          []string
	ConfidenceMin *int
	ConfidenceMax *int
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

// DefaultFilter returns a filter with no criteria and default paging
func DefaultFilter() Filter {
	return Filter{
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}
}

// Sanitize trims s and strips characters commonly used for injection
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripChars, r) {
			return -1
		}
		return r
	}, s)
}

// Normalize validates raw parameters and converts them into a Filter.
// Unknown keys are ignored. The first invalid field, in the order below,
// fails the whole call with a *core.ValidationError.
func Normalize(raw RawParams) (Filter, error) {
	f := DefaultFilter()

	get := func(key string) (string, bool) {
		v, ok := raw[key]
		if !ok {
			return "", false
		}
		v = Sanitize(v)
		return v, v != ""
	}

	if v, ok := get("query"); ok {
		if err := core.ValidateVar("query", v, "min=2,max=100"); err != nil {
			return Filter{}, err
		}
		f.Query = v
	}

	if v, ok := get("type"); ok {
		if err := core.ValidateVar("type", v, "ioctype"); err != nil {
			return Filter{}, err
		}
		f.Type = core.IOCType(v)
	}

	if v, ok := get("threatLevel"); ok {
		if err := core.ValidateVar("threatLevel", v, "threatlevel"); err != nil {
			return Filter{}, err
		}
		f.ThreatLevel = core.ThreatLevel(v)
	}

	if v, ok := get("tags"); ok {
		if err := core.ValidateVar("tags", v, "ioctag"); err != nil {
			return Filter{}, err
		}
		f.Tags = splitTags(v)
	}

	for _, key := range []string{"confidenceMin", "confidenceMax"} {
		v, ok := get(key)
		if !ok {
			continue
		}
		n, err := parseInt(key, v, "gte=0,lte=100")
		if err != nil {
			return Filter{}, err
		}
		if key == "confidenceMin" {
			f.ConfidenceMin = &n
		} else {
			f.ConfidenceMax = &n
		}
	}
	if f.ConfidenceMin != nil && f.ConfidenceMax != nil && *f.ConfidenceMax < *f.ConfidenceMin {
		return Filter{}, core.NewValidationError("confidenceMax", "must be greater than or equal to confidenceMin")
	}

	if v, ok := get("dateFrom"); ok {
		t, _, err := parseDate("dateFrom", v)
		if err != nil {
			return Filter{}, err
		}
		f.DateFrom = &t
	}
	if v, ok := get("dateTo"); ok {
		t, dateOnly, err := parseDate("dateTo", v)
		if err != nil {
			return Filter{}, err
		}
		if dateOnly {
			// A bare date includes the whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return Filter{}, core.NewValidationError("dateTo", "must not be before dateFrom")
	}

	if v, ok := get("sortBy"); ok {
		if err := core.ValidateVar("sortBy", v, "oneof="+strings.Join(SortKeys, " ")); err != nil {
			return Filter{}, err
		}
		f.SortBy = v
	}

	if v, ok := get("sortOrder"); ok {
		if err := core.ValidateVar("sortOrder", v, "oneof=asc desc"); err != nil {
			return Filter{}, err
		}
		f.SortOrder = v
	}

	if v, ok := get("page"); ok {
		n, err := parseInt("page", v, "gte=1")
		if err != nil {
			return Filter{}, err
		}
		f.Page = n
	}

	if v, ok := get("limit"); ok {
		n, err := parseInt("limit", v, "gte=1,lte=100")
		if err != nil {
			return Filter{}, err
		}
		f.Limit = n
	}

	return f, nil
}

func parseInt(field, v, tag string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewValidationError(field, "must be an integer")
	}
	if err := core.ValidateVar(field, n, tag); err != nil {
		return 0, err
	}
	return n, nil
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// instant in UTC, reporting whether the input was a bare date.
func parseDate(field, v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, core.NewValidationError(field, "must be an ISO-8601 date (YYYY-MM-DD or RFC 3339)")
}

// splitTags splits a comma separated tag list, trimming entries and
// dropping empties and repeats while keeping first-seen order.
func splitTags(v string) []string {
	parts := strings.Split(v, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		tags = append(tags, p)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
