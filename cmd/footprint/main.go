package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/cmd/footprint/commands"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
)

var rootCmd = &cobra.Command{
	Use:   "footprint",
	Short: "footprint - OSINT identity lookup",
	Long: `footprint - Gather public evidence about an identity.

footprint takes a username, email, phone number or name, asks every enabled
source for public traces, and writes a reproducible run directory: manifest,
raw artifacts, JSON and Markdown reports.

Available commands:
  lookup  - Run a lookup and write a run directory
  plan    - Show the requests a lookup would issue
  sources - List and describe sources
  runs    - Browse recorded runs
  names   - Generate username permutations and search dorks
  tools   - Built-in scanners used by tool sources
  am      - Manage footprint configuration ("I am")

Examples:
  footprint lookup --username alice
  footprint plan --email a@example.com
  footprint sources list
  footprint runs list`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON on stderr")
	rootCmd.PersistentFlags().String("config", "", "Config file (skips the am.toml cascade)")

	rootCmd.AddCommand(commands.LookupCmd)
	rootCmd.AddCommand(commands.PlanCmd)
	rootCmd.AddCommand(commands.SourcesCmd)
	rootCmd.AddCommand(commands.RunsCmd)
	rootCmd.AddCommand(commands.NamesCmd)
	rootCmd.AddCommand(commands.ToolsCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case errors.IsInvalidInputError(err):
		return 2
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
	}
	os.Exit(exitCode(err))
}
