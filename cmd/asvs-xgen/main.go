package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m4uz/asvs-xgen/internal/catalog"
	"github.com/m4uz/asvs-xgen/internal/checklist"
	"github.com/m4uz/asvs-xgen/internal/fetch"
	"github.com/m4uz/asvs-xgen/internal/summary"
	"github.com/m4uz/asvs-xgen/internal/workbook"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// Exit codes. Cobra usage errors exit 1.
const (
	exitConfig   = 3 // invalid flag values
	exitFetch    = 4 // catalog download failed
	exitCatalog  = 5 // catalog content could not be parsed
	exitWorkbook = 6 // workbook could not be built or saved
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// generateFlags holds the parsed flags for the root command.
type generateFlags struct {
	asvsVersion int
	output      string
}

func main() {
	var flags generateFlags
	root := &cobra.Command{
		Use:     "asvs-xgen",
		Short:   "Generate an OWASP ASVS checklist workbook",
		Long:    "asvs-xgen downloads the OWASP Application Security Verification Standard catalog and renders it as a multi-sheet Excel checklist: one worksheet per chapter plus a Summary dashboard with per-level fulfillment statistics and a chart.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(flags)
		},
	}

	f := root.Flags()
	f.IntVarP(&flags.asvsVersion, "asvs-version", "a", 5, "ASVS version to download: 4 or 5")
	f.StringVarP(&flags.output, "output", "o", "", "Output file path (.xlsx); defaults to a versioned filename")

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func runGenerate(flags generateFlags) error {
	// --- Step 1: Validate flags; nothing is downloaded or written on bad config ---
	out, err := resolveOutput(flags)
	if err != nil {
		return codeError(exitConfig, "%s", err)
	}

	// --- Step 2: Download the catalog ---
	url, err := fetch.CatalogURL(flags.asvsVersion)
	if err != nil {
		return codeError(exitConfig, "%s", err)
	}
	logInfo("Downloading ASVS from %s", url)
	raw, err := fetch.Catalog(context.Background(), flags.asvsVersion)
	if err != nil {
		return codeError(exitFetch, "downloading catalog: %s", err)
	}

	// --- Step 3: Normalize into chapter-grouped requirements ---
	logInfo("Preparing worksheet data")
	cat, err := catalog.Parse(raw, flags.asvsVersion)
	if err != nil {
		return codeError(exitCatalog, "parsing catalog: %s", err)
	}

	// --- Step 4: Derive the chapter tables ---
	tables, err := checklist.Build(cat)
	if err != nil {
		return codeError(exitCatalog, "building chapter tables: %s", err)
	}

	// --- Step 5: Lay out the dashboard and its formulas ---
	layout := summary.NewLayout(len(tables))
	blocks, total := summary.Build(tables, layout)

	// --- Step 6: Realize the workbook and save it in one piece ---
	logInfo("Creating workbook")
	f, err := workbook.Build(tables, blocks, total, layout)
	if err != nil {
		return codeError(exitWorkbook, "creating workbook: %s", err)
	}
	defer f.Close() //nolint:errcheck

	if err := f.SaveAs(out); err != nil {
		return codeError(exitWorkbook, "saving workbook: %s", err)
	}

	logInfo("Workbook saved as %s", out)
	return nil
}

// defaultOutputs names the workbook written when --output is not given.
var defaultOutputs = map[int]string{
	4: "OWASP-ASVS-4.0.3.xlsx",
	5: "OWASP-ASVS-5.0.0.xlsx",
}

// resolveOutput validates the flag combination and returns the output
// path, defaulting to the version-specific filename.
func resolveOutput(flags generateFlags) (string, error) {
	if flags.asvsVersion != 4 && flags.asvsVersion != 5 {
		return "", fmt.Errorf("--asvs-version must be 4 or 5, got %d", flags.asvsVersion)
	}
	if flags.output == "" {
		return defaultOutputs[flags.asvsVersion], nil
	}
	if !strings.HasSuffix(strings.ToLower(flags.output), ".xlsx") {
		return "", fmt.Errorf("output file must have a .xlsx extension, got %q", flags.output)
	}
	return flags.output, nil
}

// logInfo prints a progress line to stderr, keeping stdout clean.
func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
}
