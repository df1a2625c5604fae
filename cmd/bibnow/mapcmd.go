package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/pipeline"
)

var mapInput inputOptions

func init() {
	mapInput.register(mapCmd)
	rootCmd.AddCommand(mapCmd)
}

var mapCmd = &cobra.Command{
	Use:   "map [file|-]",
	Short: "Print the Zotero items records map to",
	Long: `Print the Zotero items that records map to, with overflow warnings.

This is a dry run: nothing is uploaded or written.

Usage:
  bibnow map refs.bib
  bibnow map --doi 10.1234/bees --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMap,
}

// MapResponse is the response for the map command.
type MapResponse struct {
	Results []pipeline.Result `json:"results"`
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(config.ModeDryRun)
	records, parseErrs, _ := mustParseInput(cmd.Context(), cfg, args, mapInput)

	proc := &pipeline.Processor{Mode: pipeline.DryRun, Deriver: cfg.Deriver(), Logger: slog.Default()}
	results := proc.Process(cmd.Context(), records, parseErrs)

	if !humanOutput {
		outputJSON(MapResponse{Results: results})
	} else {
		for _, r := range results {
			if r.Failed() {
				fmt.Printf("#%d: %s\n\n", r.Index+1, r.Error)
				continue
			}
			fmt.Printf("#%d %s (%s)\n", r.Index+1, r.Keys.CiteKey, r.Destination.ItemType)
			data, _ := json.MarshalIndent(r.Destination, "  ", "  ")
			fmt.Printf("  %s\n", data)
			for _, w := range r.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			fmt.Println()
		}
	}

	if code := exitCodeFor(pipeline.DryRun, results); code != ExitSuccess {
		return exitCodeError(code)
	}
	return nil
}
