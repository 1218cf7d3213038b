package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/db"
	"github.com/teranos/footprint/display"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/lookup"
	"github.com/teranos/footprint/report"
	"github.com/teranos/footprint/sources/builtin"
	"github.com/teranos/footprint/sym"
)

// LookupCmd runs a lookup and writes a run directory
var LookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: sym.Lookup + " Look up public evidence for an identity",
	Long: sym.Lookup + ` lookup — Pull public evidence for a username, email, phone or name

Plans requests across every enabled source that accepts the given inputs,
fetches them politely (robots.txt, per-origin rate limit), parses findings,
correlates them into entities and writes a timestamped run directory with
the manifest, raw artifacts and reports.

Examples:
  footprint lookup --username alice
  footprint lookup --name "Ada Lovelace" --workers 1
  footprint lookup --email a@example.com --output /tmp/runs --json`,
	RunE: runLookup,
}

var (
	lookupInputs  inputFlags
	lookupOutput  string
	lookupWorkers int
)

func init() {
	lookupInputs.register(LookupCmd)
	LookupCmd.Flags().StringVar(&lookupOutput, "output", "", "Runs directory (overrides output.runs_dir)")
	LookupCmd.Flags().IntVar(&lookupWorkers, "workers", 0, "Concurrent source lanes (overrides lookup.workers)")
	LookupCmd.Flags().Bool("json", false, "Print a JSON summary instead of the console report")
}

// lookupSummary is the --json output of lookup
type lookupSummary struct {
	RunID     string       `json:"run_id"`
	Paths     lookup.Paths `json:"paths"`
	Requests  int          `json:"requests"`
	Findings  int          `json:"findings"`
	Entities  int          `json:"entities"`
	Warnings  int          `json:"warnings"`
	Cancelled bool         `json:"cancelled"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	in, err := lookupInputs.inputs()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if lookupOutput != "" {
		cfg.Output.RunsDir = lookupOutput
	}
	if lookupWorkers > 0 {
		cfg.Lookup.Workers = lookupWorkers
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	reg, err := builtin.Registry(cfg)
	if err != nil {
		return err
	}

	jsonOut := display.ShouldOutputJSON(cmd)
	var emitter lookup.Emitter = lookup.NopEmitter{}
	if !jsonOut {
		emitter = lookup.NewCLIEmitter(verbosity(cmd))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := lookup.Run(ctx, lookup.Options{
		Inputs:   in,
		Registry: reg,
		Config:   cfg,
		Emitter:  emitter,
		Logger:   logger.ComponentLogger("lookup"),
	})
	if err != nil {
		return err
	}

	recordRun(cmd.Context(), cfg, res)

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := display.OutputJSON(out, lookupSummary{
			RunID:     res.RunID,
			Paths:     res.Paths,
			Requests:  len(res.Plan),
			Findings:  len(res.Findings),
			Entities:  len(res.Entities),
			Warnings:  len(res.Warnings),
			Cancelled: res.Cancelled,
		}); err != nil {
			return err
		}
	} else {
		console := res.Console
		if display.IsTerminal(out) {
			console = report.Console(report.Data{
				RunID:    res.RunID,
				Sources:  res.Manifest.Sources,
				Findings: res.Findings,
				Warnings: res.Warnings,
			}, true)
		}
		fmt.Fprintln(out, console)
		fmt.Fprintf(out, "Manifest: %s\nJSON report: %s\nMarkdown report: %s\n",
			res.Paths.Manifest, res.Paths.ReportJSON, res.Paths.ReportMarkdown)
	}

	if res.Cancelled {
		return errors.WithHint(
			errors.Wrapf(context.Canceled, "run %s interrupted", res.RunID),
			"partial results were written to "+res.Paths.RunDir)
	}
	return nil
}

// recordRun adds the run to the index. Index failures never fail the lookup.
func recordRun(ctx context.Context, cfg *am.Config, res *lookup.Result) {
	if !cfg.Database.Enabled || res.Manifest == nil {
		return
	}
	log := logger.ComponentLogger("db")
	database, err := openDatabase(cfg)
	if err != nil {
		log.Warnw("Run index unavailable", logger.FieldError, err.Error())
		return
	}
	defer database.Close()

	rec, err := db.RecordFromManifest(*res.Manifest, len(res.Findings), res.Paths.RunDir)
	if err == nil {
		err = db.NewRunStore(database).RecordRun(ctx, rec)
	}
	if err != nil {
		log.Warnw("Failed to record run", logger.FieldRunID, res.RunID, logger.FieldError, err.Error())
	}
}
