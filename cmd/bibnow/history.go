package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/runlog"
)

// DBFile is the run log query cache inside the log directory.
const DBFile = "runs.db"

// DefaultHistoryLimit is the default number of runs listed.
const DefaultHistoryLimit = 20

var (
	historyCitekey string
	historyLimit   int
)

func init() {
	historyCmd.Flags().StringVar(&historyCitekey, "citekey", "", "Only show runs of this citekey")
	historyCmd.Flags().IntVar(&historyLimit, "limit", DefaultHistoryLimit, "Maximum number of runs (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List logged runs, newest first",
	Long: `List logged runs, newest first.

The SQLite cache is rebuilt from runs.jsonl on every call.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// HistoryResponse is the response for the history command.
type HistoryResponse struct {
	Total int             `json:"total"`
	Runs  []runlog.Record `json:"runs"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(config.ModeDryRun)

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		exitWithError(ExitError, "creating log directory: %v", err)
	}
	db, err := runlog.OpenDB(filepath.Join(cfg.LogDir, DBFile))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	total, err := db.RebuildFromJSONL(runlog.New(cfg.LogDir).Path())
	if err != nil {
		exitWithError(ExitDataError, "rebuilding run log cache: %v", err)
	}

	var runs []runlog.Record
	if historyCitekey != "" {
		runs, err = db.FindByCitekey(historyCitekey)
		if err == nil && historyLimit > 0 && len(runs) > historyLimit {
			runs = runs[:historyLimit]
		}
	} else {
		runs, err = db.Recent(historyLimit)
	}
	if err != nil {
		exitWithError(ExitError, "querying runs: %v", err)
	}
	if runs == nil {
		runs = []runlog.Record{}
	}

	if !humanOutput {
		return outputJSON(HistoryResponse{Total: total, Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Println("No runs logged.")
		return nil
	}
	t := newTable("When", "Mode", "Citekey", "Zotero key", "Status")
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			r.Mode,
			truncateString(r.Citekey, ListTitleMaxLen),
			r.RemoteKey,
			statusText(!r.Success, false),
		})
	}
	t.Render()
	fmt.Printf("%d of %d runs\n", len(runs), total)
	return nil
}
