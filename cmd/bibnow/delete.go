package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/zotero"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <zotero-key>",
	Short: "Delete a Zotero item",
	Long: `Delete a Zotero item by key. The item's current version is fetched first
so a concurrent edit makes the delete fail instead of being lost.

Notes in the vault are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

// DeleteResponse is the response for the delete command.
type DeleteResponse struct {
	Status  string `json:"status"`
	Key     string `json:"key"`
	Version int    `json:"version"`
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(config.ModeAPI)
	client := newZoteroClient(cfg)
	key := args[0]

	version, err := client.ItemVersion(cmd.Context(), key)
	if err != nil {
		exitForZoteroError(err, "looking up %s", key)
	}
	if err := client.DeleteItem(cmd.Context(), key, version); err != nil {
		exitForZoteroError(err, "deleting %s", key)
	}

	if humanOutput {
		fmt.Printf("Deleted %s (version %d)\n", key, version)
		return nil
	}
	return outputJSON(DeleteResponse{Status: "deleted", Key: key, Version: version})
}

// exitForZoteroError exits with the code matching a Zotero API error.
func exitForZoteroError(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case zotero.IsAuthError(err):
		exitWithError(ExitConfigError, "%s: %v", msg, err)
	case zotero.IsNotFound(err):
		exitWithError(ExitDataError, "%s: not found", msg)
	}
	exitWithError(ExitError, "%s: %v", msg, err)
}
