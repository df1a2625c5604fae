package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
)

var configCheck bool

func init() {
	configCmd.Flags().BoolVar(&configCheck, "check", false, "Fail unless the settings needed by --commit are present")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging the config file, .env
and environment variables. The API key is masked.

Usage:
  bibnow config
  bibnow config --check`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path   string        `json:"path"`
	Config config.Config `json:"config"`
	Valid  bool          `json:"valid"`
	Error  string        `json:"error,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	mode := config.ModeDryRun
	if configCheck {
		mode = config.ModeCommit
	}
	cfg := mustLoadConfig(config.ModeDryRun)

	path := configPath
	if path == "" {
		path = config.Path()
	}
	resp := ConfigResponse{Path: path, Config: cfg.Redacted(), Valid: true}
	if err := cfg.Validate(config.ModeCommit); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	if humanOutput {
		c := resp.Config
		t := newTable("Setting", "Value")
		t.AppendRows([]table.Row{
			{"config file", resp.Path},
			{"zotero_api_key", c.APIKey},
			{"zotero_library", c.Library},
			{"zotero_user_id", c.UserID},
			{"zotero_username", c.Username},
			{"zotero_group_id", c.GroupID},
			{"vault_path", c.VaultPath},
			{"log_dir", c.LogDir},
			{"bib_path", c.BibPath},
			{"template_path", c.TemplatePath},
			{"citation_style", c.CitationStyle},
		})
		t.Render()
		if !resp.Valid {
			fmt.Printf("Not ready for --commit: %s\n", resp.Error)
		}
	} else {
		outputJSON(resp)
	}

	if mode == config.ModeCommit && !resp.Valid {
		return exitCodeError(ExitConfigError)
	}
	return nil
}
