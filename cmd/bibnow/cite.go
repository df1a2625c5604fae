package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
)

var citeStyle string

func init() {
	citeCmd.Flags().StringVar(&citeStyle, "style", "", "CSL style (default: citation_style from config)")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite <zotero-key>",
	Short: "Fetch the formatted citation of a Zotero item",
	Args:  cobra.ExactArgs(1),
	RunE:  runCite,
}

// CiteResponse is the response for the cite command.
type CiteResponse struct {
	Key      string `json:"key"`
	Style    string `json:"style"`
	URL      string `json:"url"`
	Citation string `json:"citation"`
}

func runCite(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(config.ModeAPI)
	client := newZoteroClient(cfg)

	style := citeStyle
	if style == "" {
		style = cfg.CitationStyle
	}

	cite, err := client.FetchCitation(cmd.Context(), args[0], style)
	if err != nil {
		exitForZoteroError(err, "fetching citation of %s", args[0])
	}

	resp := CiteResponse{Key: args[0], Style: style, URL: client.ItemURL(args[0]), Citation: cite}
	if humanOutput {
		fmt.Println(cite)
		fmt.Println(resp.URL)
		return nil
	}
	return outputJSON(resp)
}
