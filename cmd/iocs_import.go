package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"threatshare/core"
	"threatshare/storage"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

//go:embed schema/ioc_import.schema.json
var importSchema []byte

// importDocument is the layout of an import file
type importDocument struct {
	IOCs []core.IOCSubmission `yaml:"iocs"`
}

// importFailure records why one entry of an import was not stored
type importFailure struct {
	Index int    `json:"index"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// importSummary counts the outcome of every entry in an import
type importSummary struct {
	Total     int             `json:"total"`
	Created   int             `json:"created"`
	Duplicate int             `json:"duplicate"`
	Invalid   int             `json:"invalid"`
	Failed    int             `json:"failed"`
	DryRun    bool            `json:"dryRun"`
	Failures  []importFailure `json:"failures,omitempty"`
}

// submitter stores one submission; satisfied by service.IOCService
type submitter interface {
	Submit(ctx context.Context, sub *core.IOCSubmission, username string) (*core.IOC, error)
}

// newImportCmd creates the 'import' subcommand
func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		file      string
		perSecond float64
		dryRun    bool
		submitAs  string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import IOCs from a YAML file",
		Long: `Import IOCs from a YAML file of the form:

  iocs:
    - type: domain
      value: evil.example.com
      threatLevel: high
      confidence: 80
      tags: [phishing]

The document is checked against the import schema before anything is stored.
Each entry then goes through the same validation as an API submission.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if perSecond < 0 {
				return fmt.Errorf("--rate must not be negative")
			}

			entries, err := loadImportFile(file)
			if err != nil {
				return err
			}

			limit := rate.Inf
			if perSecond > 0 {
				limit = rate.Limit(perSecond)
			}
			limiter := rate.NewLimiter(limit, 1)

			run := func(ctx context.Context, svc submitter) error {
				var s *spinner.Spinner
				if !opts.json && !opts.quiet {
					infoColor.Fprintf(cmd.ErrOrStderr(), "Importing %d IOCs from %s\n", len(entries), file)
					s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
					s.Suffix = " Submitting IOCs..."
					s.Start()
				}

				summary, err := importIOCs(ctx, svc, entries, limiter, submitAs, dryRun)

				if s != nil {
					s.Stop()
				}
				if err != nil {
					return err
				}

				if opts.json {
					return outputAsJSON(cmd.OutOrStdout(), summary)
				}
				renderImportSummary(cmd.OutOrStdout(), summary)
				return nil
			}

			if dryRun {
				ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
				defer cancel()
				return run(ctx, nil)
			}
			return withBackend(func(ctx context.Context, b *backend) error {
				return run(ctx, b.service)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file to import")
	cmd.Flags().Float64Var(&perSecond, "rate", 20, "Maximum submissions per second (0 for unlimited)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate entries without storing them")
	cmd.Flags().StringVar(&submitAs, "submitter", "", "Submitter recorded for non-anonymous entries")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// loadImportFile reads an import file, validates it against the import
// schema and decodes its entries.
func loadImportFile(filename string) ([]core.IOCSubmission, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() > maxImportFileSize {
		return nil, fmt.Errorf("file too large: maximum size is %d bytes (%d MB), got %d bytes",
			maxImportFileSize, maxImportFileSize/(1024*1024), fileInfo.Size())
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parseImport(data)
}

// parseImport validates raw YAML against the import schema and decodes it
func parseImport(data []byte) ([]core.IOCSubmission, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if generic == nil {
		return nil, fmt.Errorf("import file is empty")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(importSchema),
		gojsonschema.NewGoLoader(generic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate import against schema: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("import validation failed: %s", strings.Join(problems, "; "))
	}

	var doc importDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode IOCs: %w", err)
	}
	return doc.IOCs, nil
}

// importIOCs submits entries one by one, paced by limiter. A nil svc
// with dryRun only validates. Per-entry failures are counted, not returned;
// the error is non-nil only when ctx ends the import early.
func importIOCs(ctx context.Context, svc submitter, entries []core.IOCSubmission, limiter *rate.Limiter, username string, dryRun bool) (*importSummary, error) {
	summary := &importSummary{Total: len(entries), DryRun: dryRun}

	fail := func(i int, entry *core.IOCSubmission, err error) {
		summary.Failures = append(summary.Failures, importFailure{Index: i, Value: entry.Value, Error: err.Error()})
	}

	for i := range entries {
		entry := &entries[i]

		if dryRun {
			if err := entry.Validate(); err != nil {
				summary.Invalid++
				fail(i, entry, err)
				continue
			}
			summary.Created++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return summary, fmt.Errorf("import interrupted after %d of %d entries: %w", i, len(entries), err)
		}

		_, err := svc.Submit(ctx, entry, username)
		switch {
		case err == nil:
			summary.Created++
		case errors.Is(err, storage.ErrDuplicateIOC):
			summary.Duplicate++
		case core.IsValidationError(err):
			summary.Invalid++
			fail(i, entry, err)
		default:
			summary.Failed++
			fail(i, entry, err)
		}
	}
	return summary, nil
}

// renderImportSummary prints the created, duplicate and invalid counts and any failures
func renderImportSummary(w io.Writer, s *importSummary) {
	fmt.Fprintln(w)
	if s.DryRun {
		warningColor.Fprintln(w, "Dry run: nothing was stored")
		successColor.Fprintf(w, "✓ %d valid\n", s.Created)
	} else {
		successColor.Fprintf(w, "✓ %d created\n", s.Created)
		fmt.Fprintf(w, "  %d duplicate\n", s.Duplicate)
	}
	if s.Invalid > 0 {
		errorColor.Fprintf(w, "✗ %d invalid\n", s.Invalid)
	}
	if s.Failed > 0 {
		errorColor.Fprintf(w, "✗ %d failed\n", s.Failed)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  #%d %s: %s\n", f.Index+1, f.Value, f.Error)
	}
	fmt.Fprintf(w, "\nProcessed %d entries\n", s.Total)
}
