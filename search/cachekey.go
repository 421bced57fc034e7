package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CacheKeyDelimiter separates key:value pairs in a cache key
const CacheKeyDelimiter = "|"

// CacheKey derives a deterministic key from the fields present in f.
// Equal filters always produce the same key whatever order they were
// built in; absent fields are left out rather than encoded as empty.
func CacheKey(f Filter) string {
	return CacheKeyFromMap(filterFields(f))
}

// CacheKeyFromMap joins the non-empty entries of fields as name:value
// pairs sorted by name. Values are query-escaped so they can never carry
// the pair separator or the delimiter.
func CacheKeyFromMap(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + url.QueryEscape(fields[name])
	}
	return strings.Join(parts, CacheKeyDelimiter)
}

// filterFields renders the present fields of f using their parameter names
func filterFields(f Filter) map[string]string {
	fields := map[string]string{
		"query":       f.Query,
		"type":        string(f.Type),
		"threatLevel": string(f.ThreatLevel),
		"tags":        strings.Join(f.Tags, ","),
		"sortBy":      f.SortBy,
		"sortOrder":   f.SortOrder,
	}
	if f.ConfidenceMin != nil {
		fields["confidenceMin"] = strconv.Itoa(*f.ConfidenceMin)
	}
	if f.ConfidenceMax != nil {
		fields["confidenceMax"] = strconv.Itoa(*f.ConfidenceMax)
	}
	if f.DateFrom != nil {
		fields["dateFrom"] = f.DateFrom.UTC().Format(time.RFC3339Nano)
	}
	if f.DateTo != nil {
		fields["dateTo"] = f.DateTo.UTC().Format(time.RFC3339Nano)
	}
	if f.Page > 0 {
		fields["page"] = strconv.Itoa(f.Page)
	}
	if f.Limit > 0 {
		fields["limit"] = strconv.Itoa(f.Limit)
	}
	return fields
}
