package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/display"
	"github.com/teranos/footprint/lookup"
	"github.com/teranos/footprint/sources/builtin"
	"github.com/teranos/footprint/sym"
)

// PlanCmd prints the requests a lookup would issue without fetching anything
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: sym.Plan + " Show the requests a lookup would issue",
	Long: sym.Plan + ` plan — Dry-run a lookup

Builds the request plan for the given inputs and prints it in plan order.
Nothing is fetched and no run directory is created.

Examples:
  footprint plan --username alice
  footprint plan --name "Ada Lovelace" --json`,
	RunE: runPlan,
}

var planInputs inputFlags

func init() {
	planInputs.register(PlanCmd)
	PlanCmd.Flags().Bool("json", false, "Output the plan as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	in, err := planInputs.inputs()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := builtin.Registry(cfg)
	if err != nil {
		return err
	}
	plan, err := lookup.BuildPlan(in, reg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		if plan == nil {
			plan = []lookup.PlannedRequest{}
		}
		return display.OutputJSON(out, plan)
	}
	if len(plan) == 0 {
		fmt.Fprintln(out, "No enabled source accepts these inputs")
		return nil
	}
	rows := make([][]string, 0, len(plan))
	for i, req := range plan {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), req.SourceID, string(req.InputType), string(req.Transport), req.URL,
		})
	}
	return display.Table(out, []string{"#", "SOURCE", "INPUT", "TRANSPORT", "URL"}, rows)
}
