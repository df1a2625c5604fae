// Package main provides the bibnow CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/logging"
	"github.com/matsen/bibnow/internal/zotero"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	logFormat   string
	configPath  string
	envFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var code exitCodeError
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibnow",
	Short: "Turn BibTeX and CSL-JSON into Zotero items and literature notes",
	Long: `bibnow converts bibliographic records into Zotero items and writes a
linked Markdown literature note for each one.

Input comes from a file, the clipboard, a PDF (via its DOI) or a DOI.
Every command is a dry run unless --commit is given.
All commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := logging.Init(logLevel, logFormat); err != nil {
			return err
		}
		if err := config.LoadDotEnv(envFile); err != nil {
			slog.Warn("ignoring .env", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/bibnow/config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration and checks it for mode, exits on error.
func mustLoadConfig(mode string) *config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(mode); err != nil {
		if errors.Is(err, config.ErrConfig) && humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// newZoteroClient builds an API client for the configured library.
func newZoteroClient(cfg *config.Config) *zotero.Client {
	kind := zotero.LibraryUser
	if cfg.Library == config.LibraryGroup {
		kind = zotero.LibraryGroup
	}
	return zotero.NewClient(
		zotero.WithAPIKey(cfg.APIKey),
		zotero.WithLibrary(kind, cfg.LibraryID()),
		zotero.WithUsername(cfg.Username),
	)
}
