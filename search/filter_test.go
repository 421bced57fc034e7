package search

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"threatshare/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
	assert.NotEmpty(t, ve.Message)
}

func TestNormalize_Defaults(t *testing.T) {
	f, err := Normalize(RawParams{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFilter(), f)
	assert.Equal(t, "createdAt", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
}

func TestNormalize_AllFields(t *testing.T) {
	f, err := Normalize(RawParams{
		"query":         "emotet",
		"type":          "domain",
		"threatLevel":   "critical",
		"tags":          "c2, botnet,,c2",
		"confidenceMin": "50",
		"confidenceMax": "80",
		"dateFrom":      "2024-01-01",
		"dateTo":        "2024-01-31T12:00:00Z",
		"sortBy":        "threatLevel",
		"sortOrder":     "asc",
		"page":          "3",
		"limit":         "50",
	})
	require.NoError(t, err)

	assert.Equal(t, "emotet", f.Query)
	assert.Equal(t, core.IOCTypeDomain, f.Type)
	assert.Equal(t, core.ThreatLevelCritical, f.ThreatLevel)
	assert.Equal(t, []string{"c2", "botnet"}, f.Tags)
	require.NotNil(t, f.ConfidenceMin)
	require.NotNil(t, f.ConfidenceMax)
	assert.Equal(t, 50, *f.ConfidenceMin)
	assert.Equal(t, 80, *f.ConfidenceMax)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), *f.DateTo)
	assert.Equal(t, "threatLevel", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.Limit)
}

func TestNormalize_DateOnlyUpperBoundCoversWholeDay(t *testing.T) {
	f, err := Normalize(RawParams{"dateTo": "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *f.DateTo)
}

func TestNormalize_StripsInjectionCharacters(t *testing.T) {
	f, err := Normalize(RawParams{"query": "  <script>$where(1)  "})
	require.NoError(t, err)
	assert.Equal(t, "scriptwhere1", f.Query)

	// A value made only of stripped characters is treated as absent
	f, err = Normalize(RawParams{"type": " $<>() "})
	require.NoError(t, err)
	assert.Empty(t, f.Type)
}

func TestNormalize_IgnoresUnknownKeys(t *testing.T) {
	f, err := Normalize(RawParams{"format": "xml", "$where": "1", "foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, DefaultFilter(), f)
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawParams
		field string
	}{
		{"confidenceMin above range", RawParams{"confidenceMin": "150"}, "confidenceMin"},
		{"confidenceMax below range", RawParams{"confidenceMax": "-1"}, "confidenceMax"},
		{"confidence not a number", RawParams{"confidenceMin": "high"}, "confidenceMin"},
		{"confidence range inverted", RawParams{"confidenceMin": "80", "confidenceMax": "50"}, "confidenceMax"},
		{"sortOrder sideways", RawParams{"sortOrder": "sideways"}, "sortOrder"},
		{"sortBy unknown", RawParams{"sortBy": "value"}, "sortBy"},
		{"query too short", RawParams{"query": "a"}, "query"},
		{"query too long", RawParams{"query": strings.Repeat("a", 101)}, "query"},
		{"unknown type", RawParams{"type": "hash"}, "type"},
		{"unknown threat level", RawParams{"threatLevel": "severe"}, "threatLevel"},
		{"tags bad characters", RawParams{"tags": "c2;drop"}, "tags"},
		{"bad dateFrom", RawParams{"dateFrom": "yesterday"}, "dateFrom"},
		{"dateTo before dateFrom", RawParams{"dateFrom": "2024-02-01", "dateTo": "2024-01-01"}, "dateTo"},
		{"page zero", RawParams{"page": "0"}, "page"},
		{"limit too large", RawParams{"limit": "101"}, "limit"},
		{"limit zero", RawParams{"limit": "0"}, "limit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Normalize(tc.raw)
			requireValidationField(t, err, tc.field)
			assert.Equal(t, Filter{}, f, "normalization is all-or-nothing")
		})
	}
}

func TestNormalize_ReportsFirstOffendingField(t *testing.T) {
	_, err := Normalize(RawParams{"limit": "500", "type": "bogus", "sortOrder": "sideways"})
	requireValidationField(t, err, "type")
}

func TestNormalize_QueryLengthCountsCharacters(t *testing.T) {
	// Two characters, six bytes
	f, err := Normalize(RawParams{"query": "日本"})
	require.NoError(t, err)
	assert.Equal(t, "日本", f.Query)
}

func TestParamsFromValues(t *testing.T) {
	values := url.Values{
		"tags":  {"c2", "botnet"},
		"type":  {"ip", "domain"},
		"empty": {},
	}
	raw := ParamsFromValues(values)
	assert.Equal(t, "c2,botnet", raw["tags"])
	assert.Equal(t, "ip", raw["type"])
	_, ok := raw["empty"]
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc", Sanitize("  a<b>c  "))
	assert.Equal(t, "x", Sanitize("$(x)"))
	assert.Equal(t, "", Sanitize("   "))
}
