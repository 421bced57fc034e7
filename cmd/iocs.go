// Package cmd provides the threatshare command-line interface.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"threatshare/bootstrap"
	"threatshare/search"
	"threatshare/service"
	"threatshare/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

const (
	maxImportFileSize = 10 * 1024 * 1024
	defaultTimeout    = 5 * time.Minute
)

// rootOptions are the persistent flags shared by every iocs subcommand
type rootOptions struct {
	json    bool
	noColor bool
	quiet   bool
}

// backend is the storage, search and submission stack a command runs against
type backend struct {
	store   storage.IOCStorage
	engine  *search.Engine
	service *service.IOCService
	close   func()
}

// openBackend connects to the configured storage and cache. Tests replace it.
var openBackend = func(ctx context.Context) (*backend, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	sugar := logger.Sugar()

	cfg, err := bootstrap.InitConfig(sugar)
	if err != nil {
		return nil, err
	}

	stores, err := bootstrap.InitStorage(ctx, cfg, sugar)
	if err != nil {
		return nil, err
	}
	caches, err := bootstrap.InitCache(ctx, cfg, sugar)
	if err != nil {
		_ = stores.Close(ctx)
		return nil, err
	}

	var (
		engineCache search.Cache
		invalidator service.CacheInvalidator
	)
	if caches != nil {
		engineCache = caches.Cache
		invalidator = caches.Cache
	}

	return &backend{
		store: stores.IOCs,
		engine: search.NewEngine(stores.IOCs, engineCache, search.Config{
			CacheTTL:     cfg.Cache.TTL,
			QueryTimeout: cfg.Search.QueryTimeout,
			ExportLimit:  cfg.Search.ExportLimit,
		}, sugar),
		service: service.NewIOCService(stores.IOCs, invalidator, sugar),
		close: func() {
			if err := caches.Close(); err != nil {
				sugar.Warnw("Failed to close cache during cleanup", "error", err)
			}
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stores.Close(closeCtx); err != nil {
				sugar.Warnw("Failed to close storage during cleanup", "error", err)
			}
			_ = logger.Sync()
		},
	}, nil
}

// withBackend runs fn against a freshly opened backend under the default timeout
func withBackend(fn func(ctx context.Context, b *backend) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.close()
	return fn(ctx, b)
}

// NewIOCsCmd creates the root iocs command with all subcommands.
func NewIOCsCmd() *cobra.Command {
	opts := &rootOptions{}

	iocsCmd := &cobra.Command{
		Use:   "iocs",
		Short: "Search, export and import shared IOCs",
		Long: `Work with the IOC collection directly, using the same configuration,
storage and search engine as the threatshare server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	iocsCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output in JSON format")
	iocsCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	iocsCmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Suppress non-essential output")

	iocsCmd.AddCommand(newSearchCmd(opts))
	iocsCmd.AddCommand(newExportCmd(opts))
	iocsCmd.AddCommand(newTagsCmd(opts))
	iocsCmd.AddCommand(newStatsCmd(opts))
	iocsCmd.AddCommand(newImportCmd(opts))

	return iocsCmd
}

// filterFlags are the search parameters shared by search and export
type filterFlags struct {
	query         string
	iocType       string
	threatLevel   string
	tags          []string
	confidenceMin int
	confidenceMax int
	dateFrom      string
	dateTo        string
	sortBy        string
	sortOrder     string
	sensitive     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Free-text query over value, description and tags")
	cmd.Flags().StringVar(&f.iocType, "type", "", "IOC type")
	cmd.Flags().StringVar(&f.threatLevel, "threat-level", "", "Threat level (low, medium, high, critical)")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "Match any of these tags")
	cmd.Flags().IntVar(&f.confidenceMin, "confidence-min", 0, "Minimum confidence (0-100)")
	cmd.Flags().IntVar(&f.confidenceMax, "confidence-max", 100, "Maximum confidence (0-100)")
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "Created on or after (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "Created on or before (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "Sort key: "+strings.Join(search.SortKeys, ", "))
	cmd.Flags().StringVar(&f.sortOrder, "sort-order", "", "Sort order: asc or desc")
	cmd.Flags().BoolVar(&f.sensitive, "include-sensitive", false, "Include full descriptions and anonymity flags")
}

// rawParams converts the flags the user actually set into search parameters,
// leaving validation to the normalizer.
func (f *filterFlags) rawParams(cmd *cobra.Command) search.RawParams {
	raw := search.RawParams{}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			raw[key] = value
		}
	}
	set("query", "query", f.query)
	set("type", "type", f.iocType)
	set("threat-level", "threatLevel", f.threatLevel)
	set("tags", "tags", strings.Join(f.tags, ","))
	set("confidence-min", "confidenceMin", strconv.Itoa(f.confidenceMin))
	set("confidence-max", "confidenceMax", strconv.Itoa(f.confidenceMax))
	set("from", "dateFrom", f.dateFrom)
	set("to", "dateTo", f.dateTo)
	set("sort-by", "sortBy", f.sortBy)
	set("sort-order", "sortOrder", f.sortOrder)
	return raw
}

// newSearchCmd creates the 'search' subcommand
func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		page    int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search IOCs",
		Long:  "Run an advanced search and print one page of results.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := filters.rawParams(cmd)
			raw["page"] = strconv.Itoa(page)
			raw["limit"] = strconv.Itoa(limit)

			return withBackend(func(ctx context.Context, b *backend) error {
				resp, err := b.engine.Search(ctx, raw, filters.sensitive)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}

				out := cmd.OutOrStdout()
				if opts.json {
					return outputAsJSON(out, resp)
				}
				renderResultsTable(out, resp.Results)
				renderPagination(out, resp.Pagination)
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", search.DefaultPage, "Page number")
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "Results per page (max 100)")

	return cmd
}

// newExportCmd creates the 'export' subcommand
func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching IOCs as CSV or JSON",
		Long:  "Export every IOC matching the filters, up to the configured export limit. Without --output the export is written to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := validateFilePath(output); err != nil {
					return fmt.Errorf("invalid file path: %w", err)
				}
			}

			raw := filters.rawParams(cmd)
			raw["format"] = format

			return withBackend(func(ctx context.Context, b *backend) error {
				results, exportFormat, err := b.engine.Export(ctx, raw, filters.sensitive)
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}

				var buf bytes.Buffer
				if err := search.Export(&buf, results, exportFormat); err != nil {
					return fmt.Errorf("failed to serialize export: %w", err)
				}

				if output == "" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				if !opts.quiet {
					successColor.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d IOCs to %s\n", len(results), output)
				}
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(search.ExportJSON), "Export format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

// newTagsCmd creates the 'tags' subcommand
func newTagsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the most used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			return withBackend(func(ctx context.Context, b *backend) error {
				tags, err := b.store.PopularTags(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to load popular tags: %w", err)
				}
				if opts.json {
					return outputAsJSON(cmd.OutOrStdout(), tags)
				}
				renderTagsTable(cmd.OutOrStdout(), tags)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", storage.PopularTagsLimit, "Number of tags to show")

	return cmd
}

// newStatsCmd creates the 'stats' subcommand
func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Long:  "Display totals by type and threat level, the newest submissions and daily submission counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(func(ctx context.Context, b *backend) error {
				stats, err := b.store.DashboardStats(ctx)
				if err != nil {
					return fmt.Errorf("failed to load statistics: %w", err)
				}
				if opts.json {
					return outputAsJSON(cmd.OutOrStdout(), stats)
				}
				renderDashboard(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

// validateFilePath rejects paths that traverse upwards or resolve outside
// the working directory, including URL-encoded traversal.
func validateFilePath(filename string) error {
	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		decoded = filename
	}

	if strings.Contains(decoded, "..") || strings.Contains(filename, "..") {
		return fmt.Errorf("path traversal detected: '..' not allowed in file path")
	}

	absPath, err := filepath.Abs(filepath.Clean(decoded))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	rel, err := filepath.Rel(workDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path escapes current directory")
	}

	return nil
}

// outputAsJSON writes data as indented JSON.
func outputAsJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
