package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/db"
	"github.com/teranos/footprint/display"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/storage"
	"github.com/teranos/footprint/sym"
)

// RunsCmd browses the run index
var RunsCmd = &cobra.Command{
	Use:   "runs",
	Short: sym.Run + " Browse recorded lookup runs",
	Long: sym.Run + ` runs — Browse the run index

Every lookup is recorded in the SQLite index at database.path when
database.enabled is true. The run directory stays the source of truth.

Examples:
  footprint runs list
  footprint runs list --limit 5 --json
  footprint runs show 20261019T101500Z-1a2b3c4d`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Show one run and its warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsLimit int

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to show (0 = all)")
	runsListCmd.Flags().Bool("json", false, "Output runs as JSON")
	runsShowCmd.Flags().Bool("json", false, "Output the run as JSON")

	RunsCmd.AddCommand(runsListCmd)
	RunsCmd.AddCommand(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := db.NewRunStore(database).ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		if runs == nil {
			runs = []db.RunRecord{}
		}
		return display.OutputJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "done"
		if r.Cancelled {
			status = "cancelled"
		}
		rows = append(rows, []string{
			r.RunID, r.StartedAt, status,
			strconv.Itoa(r.SourceCount), strconv.Itoa(r.FindingCount), strconv.Itoa(r.WarningCount),
		})
	}
	return display.Table(out, []string{"RUN", "STARTED", "STATUS", "REQUESTS", "FINDINGS", "WARNINGS"}, rows)
}

// runDetail joins the index row with the manifest on disk
type runDetail struct {
	db.RunRecord
	Manifest *schema.RunManifest `json:"manifest,omitempty"`
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	rec, err := db.NewRunStore(database).GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	detail := runDetail{RunRecord: *rec}
	manifest, err := storage.ReadManifest(rec.RunDir)
	if err != nil {
		logger.ComponentLogger("runs").Warnw("Manifest unreadable",
			logger.FieldPath, rec.RunDir, logger.FieldError, err.Error())
	} else {
		detail.Manifest = manifest
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, detail)
	}
	finished := "-"
	if rec.FinishedAt != nil {
		finished = *rec.FinishedAt
	}
	fmt.Fprintf(out, "Run:       %s\nStarted:   %s\nFinished:  %s\nCancelled: %t\nInputs:    %s\nRequests:  %d\nFindings:  %d\nDirectory: %s\n",
		rec.RunID, rec.StartedAt, finished, rec.Cancelled, rec.Inputs, rec.SourceCount, rec.FindingCount, rec.RunDir)
	if detail.Manifest != nil && len(detail.Manifest.Warnings) > 0 {
		fmt.Fprintln(out, "Warnings:")
		for _, w := range detail.Manifest.Warnings {
			fmt.Fprintf(out, "- %s: %s: %s\n", w.SourceID, w.Stage, w.Message)
		}
	}
	return nil
}
