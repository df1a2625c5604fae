package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/clipboard"
	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/export"
	"github.com/matsen/bibnow/internal/note"
	"github.com/matsen/bibnow/internal/pipeline"
	"github.com/matsen/bibnow/internal/runlog"
	"github.com/matsen/bibnow/internal/zotero"
)

var (
	runInput        inputOptions
	runCommit       bool
	runSkipExisting bool
	runCopyKey      bool
	runBibPath      string
)

func init() {
	runInput.register(runCmd)
	runCmd.Flags().BoolVar(&runCommit, "commit", false, "Upload to Zotero and write notes (default is a dry run)")
	runCmd.Flags().BoolVar(&runSkipExisting, "skip-existing", false, "Skip records whose citekey already has a note in the vault")
	runCmd.Flags().BoolVar(&runCopyKey, "copy-key", false, "Copy the citekeys of successful entries to the clipboard")
	runCmd.Flags().StringVar(&runBibPath, "bib", "", "Also append entries to this .bib file (overrides bib_path)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Map records and, with --commit, upload them and write notes",
	Long: `Map BibTeX or CSL-JSON records to Zotero items.

Without --commit nothing is uploaded or written; the mapped items are printed.
With --commit each item is uploaded, a literature note is written to the vault,
the entry is mirrored to the .bib file when one is configured, and the run is
logged.

Usage:
  bibnow run refs.bib
  bibnow run --clipboard --commit
  bibnow run --doi 10.1038/s41586-020-2649-2 --commit
  bibnow run --pdf paper.pdf --commit --copy-key
  cat refs.json | bibnow run - --commit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

// RunResponse is the response for the run command.
type RunResponse struct {
	Mode    string            `json:"mode"`
	Source  string            `json:"source"`
	Total   int               `json:"total"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Results []pipeline.Result `json:"results"`
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode := pipeline.DryRun
	if runCommit {
		mode = pipeline.Commit
	}
	cfg := mustLoadConfig(string(mode))

	records, parseErrs, source := mustParseInput(ctx, cfg, args, runInput)

	proc := &pipeline.Processor{
		Mode:         mode,
		Deriver:      cfg.Deriver(),
		SkipExisting: runSkipExisting,
		Logger:       slog.Default(),
		Input:        source,
	}

	if runSkipExisting {
		if cfg.VaultPath == "" {
			exitWithError(ExitConfigError, "--skip-existing needs %s", config.EnvVaultPath)
		}
		idx, err := note.ScanVault(cfg.VaultPath)
		if err != nil {
			exitWithError(ExitError, "scanning vault: %v", err)
		}
		proc.Index = idx
	}

	if mode == pipeline.Commit {
		wireCommit(ctx, proc, cfg)
	}

	results := proc.Process(ctx, records, parseErrs)
	resp := RunResponse{
		Mode:    string(mode),
		Source:  source,
		Total:   len(results),
		Failed:  pipeline.CountFailed(results),
		Results: results,
	}
	for _, r := range results {
		if r.Skipped {
			resp.Skipped++
		}
	}

	if runCopyKey {
		copyKeys(results)
	}

	if humanOutput {
		printRunHuman(resp)
	} else {
		outputJSON(resp)
	}

	if code := exitCodeFor(mode, results); code != ExitSuccess {
		return exitCodeError(code)
	}
	return nil
}

// wireCommit attaches the side-effecting collaborators.
func wireCommit(ctx context.Context, proc *pipeline.Processor, cfg *config.Config) {
	client := newZoteroClient(cfg)

	builder, err := note.NewBuilder(cfg.TemplatePath,
		note.WithItemURL(client.ItemURL),
		note.WithCitation(func(key string) string {
			cite, err := client.FetchCitation(ctx, key, cfg.CitationStyle)
			if err != nil {
				slog.Warn("formatted citation unavailable", "zotero_key", key, "error", err)
				return ""
			}
			return cite
		}),
	)
	if err != nil {
		exitWithError(ExitConfigError, "loading note template: %v", err)
	}

	proc.Uploader = client
	proc.Renderer = builder
	proc.Writer = note.NewWriter(cfg.VaultPath)
	proc.Log = runlog.New(cfg.LogDir)

	bibPath := cfg.BibPath
	if runBibPath != "" {
		bibPath = config.ExpandTilde(runBibPath)
	}
	if bibPath != "" {
		proc.Mirror = export.NewMirror(bibPath)
	}
}

// exitCodeFor maps a batch outcome to an exit code.
func exitCodeFor(mode pipeline.Mode, results []pipeline.Result) int {
	failed := pipeline.CountFailed(results)
	switch {
	case failed == 0:
		return ExitSuccess
	case mode == pipeline.Commit:
		return ExitPartialFailure
	case failed == len(results):
		return ExitDataError
	}
	return ExitSuccess
}

func copyKeys(results []pipeline.Result) {
	var keys []string
	for _, r := range results {
		if !r.Failed() && !r.Skipped && r.Keys.CiteKey != "" {
			keys = append(keys, r.Keys.CiteKey)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := clipboard.Copy(strings.Join(keys, "\n")); err != nil {
		slog.Warn("could not copy citekeys", "error", err)
	}
}

func printRunHuman(resp RunResponse) {
	t := newTable("#", "Citekey", "Item type", "Zotero key", "Upload", "Note", "Status")
	for _, r := range resp.Results {
		itemType := ""
		if r.Destination != nil {
			itemType = r.Destination.ItemType
		}
		zkey := ""
		if r.Upload != nil {
			zkey = r.Upload.Key
		}
		t.AppendRow(table.Row{
			r.Index + 1,
			r.Keys.CiteKey,
			itemType,
			zkey,
			uploadStatus(r.Upload),
			truncateString(r.NotePath, PathMaxLen),
			statusText(r.Failed(), r.Skipped),
		})
	}
	t.Render()

	for _, r := range resp.Results {
		if r.Failed() {
			fmt.Printf("#%d: %s\n", r.Index+1, r.Error)
		}
	}
	if resp.Mode == string(pipeline.DryRun) {
		fmt.Println("Dry run: nothing uploaded or written. Use --commit to apply.")
	}
	fmt.Printf("%d entries, %d failed, %d skipped (source: %s)\n", resp.Total, resp.Failed, resp.Skipped, resp.Source)
}

// uploadStatus summarizes an upload outcome for tables.
func uploadStatus(o *zotero.Outcome) string {
	if o == nil {
		return ""
	}
	return o.Message
}
