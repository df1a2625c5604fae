package main

import (
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/citekey"
	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/pipeline"
)

var keysInput inputOptions

func init() {
	keysInput.register(keysCmd)
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys [file|-]",
	Short: "Print the citekey and note filename of each record",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeys,
}

// KeysEntry is one row of the keys command.
type KeysEntry struct {
	Index int          `json:"index"`
	Keys  citekey.Keys `json:"keys"`
	Error string       `json:"error,omitempty"`
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(config.ModeDryRun)
	records, parseErrs, _ := mustParseInput(cmd.Context(), cfg, args, keysInput)

	proc := &pipeline.Processor{Mode: pipeline.DryRun, Deriver: cfg.Deriver(), Logger: slog.Default()}
	results := proc.Process(cmd.Context(), records, parseErrs)

	entries := make([]KeysEntry, len(results))
	for i, r := range results {
		entries[i] = KeysEntry{Index: r.Index, Keys: r.Keys, Error: r.Error}
	}

	if humanOutput {
		t := newTable("#", "Citekey", "Filename")
		for _, e := range entries {
			if e.Error != "" {
				t.AppendRow(table.Row{e.Index + 1, statusText(true, false), truncateString(e.Error, ListTitleMaxLen)})
				continue
			}
			t.AppendRow(table.Row{e.Index + 1, e.Keys.CiteKey, e.Keys.Filename})
		}
		t.Render()
	} else {
		outputJSON(entries)
	}
	return nil
}
