package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/clipboard"
	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/doi"
	"github.com/matsen/bibnow/internal/importer"
	"github.com/matsen/bibnow/internal/pdf"
	"github.com/matsen/bibnow/internal/reference"
)

// InputFile is the clipboard mirror kept in the log directory.
const InputFile = "input.txt"

// inputOptions selects where records come from. At most one source is set.
type inputOptions struct {
	clipboard bool
	pdfPath   string
	doi       string
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.clipboard, "clipboard", false, "Read input from the clipboard")
	cmd.Flags().StringVar(&o.pdfPath, "pdf", "", "Resolve the DOI printed in a PDF")
	cmd.Flags().StringVar(&o.doi, "doi", "", "Resolve a DOI through doi.org")
	cmd.MarkFlagsMutuallyExclusive("clipboard", "pdf", "doi")
}

// errNoDOI is returned when a PDF carries no DOI.
var errNoDOI = errors.New("no DOI found in PDF")

// clipboardMirror is where clipboard input is mirrored for the configured log
// directory.
func clipboardMirror(logDir string) string {
	if logDir == "" {
		logDir = config.DefaultLogDir()
	}
	return filepath.Join(logDir, InputFile)
}

// readInput returns the raw input text and a label for where it came from.
// With no file and no flag the clipboard is read, falling back to the last
// mirrored clipboard contents in logDir.
func readInput(ctx context.Context, args []string, opts inputOptions, logDir string) (string, string, error) {
	switch {
	case opts.doi != "":
		data, err := doi.NewResolver().Fetch(ctx, opts.doi)
		if err != nil {
			return "", "", err
		}
		return string(data), "doi:" + doi.Normalize(opts.doi), nil

	case opts.pdfPath != "":
		match, err := pdf.Find(opts.pdfPath)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", opts.pdfPath, err)
		}
		if !match.Found() {
			return "", "", fmt.Errorf("%w: %s", errNoDOI, opts.pdfPath)
		}
		slog.Info("found DOI in PDF", "path", opts.pdfPath, "doi", match.DOI, "page", match.Page)
		data, err := doi.NewResolver().Fetch(ctx, match.DOI)
		if err != nil {
			return "", "", err
		}
		return string(data), fmt.Sprintf("pdf:%s#page=%d", opts.pdfPath, match.Page), nil

	case len(args) > 0 && args[0] == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil

	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), "file:" + args[0], nil
	}

	text, src, err := clipboard.Load(clipboardMirror(logDir))
	if err != nil {
		return "", "", err
	}
	return text, string(src), nil
}

// mustParseInput reads and parses input, exits when nothing can be read or
// parsed.
func mustParseInput(ctx context.Context, cfg *config.Config, args []string, opts inputOptions) ([]reference.SourceRecord, []error, string) {
	if opts.clipboard && len(args) > 0 {
		exitWithError(ExitError, "give either a file or --clipboard, not both")
	}

	text, source, err := readInput(ctx, args, opts, cfg.LogDir)
	if err != nil {
		exitWithError(ExitError, "reading input: %v", err)
	}

	records, parseErrs := importer.Parse(text)
	if len(records) == 0 {
		msg := "no records found in input"
		if len(parseErrs) > 0 {
			msg = fmt.Sprintf("no records parsed: %v", parseErrs[0])
		}
		exitWithError(ExitDataError, "%s", msg)
	}
	slog.Debug("parsed input", "source", source, "records", len(records), "errors", len(parseErrs))
	return records, parseErrs, source
}
