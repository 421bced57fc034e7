package search

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"threatshare/core"
)

// ExportFormat is a serialization format for exported results
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportFormats lists the supported export formats
var ExportFormats = []ExportFormat{ExportJSON, ExportCSV}

// TagSeparator joins tags inside a single CSV cell
const TagSeparator = ";"

// csvColumns is the fixed column order of CSV exports
var csvColumns = []string{
	"id", "type", "value", "threatLevel", "confidence", "description", "tags",
	"firstSeen", "lastSeen", "submitter", "status", "verificationCount",
	"createdAt", "updatedAt",
}

// csvSensitiveColumns are appended when any exported record carries sensitive fields
var csvSensitiveColumns = []string{"isAnonymous", "fullDescription"}

// ParseExportFormat validates a requested format. An empty value means JSON.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.TrimSpace(s)) {
	case "", ExportJSON:
		return ExportJSON, nil
	case ExportCSV:
		return ExportCSV, nil
	default:
		return "", core.NewValidationError("format", "must be one of [json csv]")
	}
}

// ContentType returns the MIME type of an export format
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// ExportFilename names an export file produced at now
func ExportFilename(format ExportFormat, now time.Time) string {
	return fmt.Sprintf("iocs-export-%s.%s", now.UTC().Format("20060102-150405"), format)
}

// Export writes results to w in the given format
func Export(w io.Writer, results []Result, format ExportFormat) error {
	switch format {
	case ExportJSON:
		return exportJSON(w, results)
	case ExportCSV:
		return exportCSV(w, results)
	default:
		return core.NewValidationError("format", "must be one of [json csv]")
	}
}

func exportJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer, results []Result) error {
	sensitive := false
	for i := range results {
		if results[i].IsAnonymous != nil || results[i].FullDescription != nil {
			sensitive = true
			break
		}
	}

	header := append([]string{}, csvColumns...)
	if sensitive {
		header = append(header, csvSensitiveColumns...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range results {
		if err := cw.Write(csvRow(&results[i], sensitive)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return nil
}

func csvRow(r *Result, sensitive bool) []string {
	row := []string{
		r.ID,
		string(r.Type),
		r.Value,
		string(r.ThreatLevel),
		strconv.Itoa(r.Confidence),
		r.Description,
		strings.Join(r.Tags, TagSeparator),
		formatOptionalTime(r.FirstSeen),
		formatOptionalTime(r.LastSeen),
		r.Submitter,
		string(r.Status),
		strconv.Itoa(r.VerificationCount),
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
	if sensitive {
		anon := ""
		if r.IsAnonymous != nil {
			anon = strconv.FormatBool(*r.IsAnonymous)
		}
		full := ""
		if r.FullDescription != nil {
			full = *r.FullDescription
		}
		row = append(row, anon, full)
	}
	return row
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
