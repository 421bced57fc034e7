package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"threatshare/core"
	"threatshare/search"
	"threatshare/storage"

	"github.com/fatih/color"
)

const tableWidth = 110

// renderResultsTable displays search results in a formatted table
func renderResultsTable(w io.Writer, results []search.Result) {
	if len(results) == 0 {
		warningColor.Fprintln(w, "No IOCs matched")
		return
	}

	headerColor.Fprintln(w, "IOCS")
	headerColor.Fprintln(w, strings.Repeat("=", tableWidth))
	fmt.Fprintf(w, "%-10s %-12s %-40s %-10s %-5s %-20s %-10s\n",
		"ID", "Type", "Value", "Level", "Conf", "Tags", "Created")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))

	for _, r := range results {
		shortID := r.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		// Pad before coloring so escape codes do not break alignment
		level := fmt.Sprintf("%-10s", r.ThreatLevel)

		fmt.Fprintf(w, "%-10s %-12s %-40s %s %-5d %-20s %-10s\n",
			shortID,
			r.Type,
			truncate(r.Value, 40),
			formatThreatLevel(r.ThreatLevel, level),
			r.Confidence,
			truncate(strings.Join(r.Tags, ","), 20),
			formatDate(r.CreatedAt),
		)
	}

	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
}

// renderPagination prints the page position below a results table
func renderPagination(w io.Writer, p search.Pagination) {
	fmt.Fprintf(w, "Page %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
	if p.HasNext {
		fmt.Fprintf(w, ", next: --page %d", p.Page+1)
	}
	fmt.Fprintln(w)
}

// renderTagsTable displays tag usage counts
func renderTagsTable(w io.Writer, tags []storage.TagCount) {
	if len(tags) == 0 {
		warningColor.Fprintln(w, "No tags in use")
		return
	}

	headerColor.Fprintln(w, "POPULAR TAGS")
	headerColor.Fprintln(w, strings.Repeat("=", 40))
	for _, t := range tags {
		fmt.Fprintf(w, "%-30s %8d\n", truncate(t.Name, 30), t.Count)
	}
	headerColor.Fprintln(w, strings.Repeat("=", 40))
}

// renderDashboard displays collection statistics
func renderDashboard(w io.Writer, stats *storage.DashboardStats) {
	headerColor.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	headerColor.Fprintf(w, "  IOC Statistics: %d total\n", stats.TotalIOCs)
	headerColor.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	printSection(w, "By Type")
	for _, g := range stats.IOCsByType {
		printField(w, g.ID, fmt.Sprintf("%d", g.Count))
	}
	fmt.Fprintln(w)

	printSection(w, "By Threat Level")
	for _, g := range stats.IOCsByThreatLevel {
		label := fmt.Sprintf("%-25s", g.ID+":")
		fmt.Fprintf(w, "  %s %d\n", formatThreatLevel(core.ThreatLevel(g.ID), label), g.Count)
	}
	fmt.Fprintln(w)

	printSection(w, "Recent Submissions")
	if len(stats.RecentSubmissions) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, r := range stats.RecentSubmissions {
		fmt.Fprintf(w, "  %-12s %-40s %-10s %s\n", r.Type, truncate(r.Value, 40), r.ThreatLevel, formatTimeSince(r.CreatedAt))
	}
	fmt.Fprintln(w)

	printSection(w, "Submissions per Day")
	for _, d := range stats.SubmissionsOverTime {
		day := fmt.Sprintf("%04d-%02d-%02d", d.ID.Year, d.ID.Month, d.ID.Day)
		fmt.Fprintf(w, "  %s %5d %s\n", day, d.Count, strings.Repeat("▇", barLength(d.Count)))
	}
}

// printSection prints a section header
func printSection(w io.Writer, title string) {
	headerColor.Fprintf(w, "  %s\n", title)
	headerColor.Fprintln(w, "  "+strings.Repeat("─", utf8.RuneCountInString(title)))
}

// printField prints a key-value field
func printField(w io.Writer, key, value string) {
	if value == "" {
		value = "(not set)"
	}
	fmt.Fprintf(w, "  %-25s %s\n", key+":", value)
}

// formatThreatLevel colors text by the severity of level
func formatThreatLevel(level core.ThreatLevel, text string) string {
	switch level {
	case core.ThreatLevelCritical:
		return color.New(color.FgRed, color.Bold).Sprint(text)
	case core.ThreatLevelHigh:
		return color.New(color.FgRed).Sprint(text)
	case core.ThreatLevelMedium:
		return color.New(color.FgYellow).Sprint(text)
	case core.ThreatLevelLow:
		return color.New(color.FgGreen).Sprint(text)
	default:
		return text
	}
}

// formatDate formats a timestamp as a UTC calendar day
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

// formatTimeSince formats time since a timestamp
func formatTimeSince(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}

	duration := time.Since(t)
	if duration < time.Minute {
		return fmt.Sprintf("%ds ago", int(duration.Seconds()))
	}
	if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// barLength scales a daily count to a bar of at most 40 cells
func barLength(count int64) int {
	if count > 40 {
		return 40
	}
	return int(count)
}
