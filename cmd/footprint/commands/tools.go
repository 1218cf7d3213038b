package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/internal/httpclient"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/tools/whatsmyname"
)

// ToolsCmd groups the built-in scanners that tool sources invoke
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run built-in username scanners",
	Long: `Run built-in username scanners.

These commands are what the tool-transport sources execute during a lookup.
They can also be run by hand.

Examples:
  footprint tools whatsmyname --data third_party/WhatsMyName --username alice --output report.json`,
}

var toolsWhatsMyNameCmd = &cobra.Command{
	Use:   "whatsmyname",
	Short: "Check a username against the WhatsMyName site list",
	RunE:  runToolsWhatsMyName,
}

var (
	wmnData        string
	wmnUsername    string
	wmnOutput      string
	wmnTimeout     int
	wmnConcurrency int
)

func init() {
	toolsWhatsMyNameCmd.Flags().StringVar(&wmnData, "data", "", "wmn-data.json path, directory or go-getter URL")
	toolsWhatsMyNameCmd.Flags().StringVar(&wmnUsername, "username", "", "Username to check")
	toolsWhatsMyNameCmd.Flags().StringVar(&wmnOutput, "output", "", "Report file to write")
	toolsWhatsMyNameCmd.Flags().IntVar(&wmnTimeout, "timeout", 15, "Per-site timeout in seconds")
	toolsWhatsMyNameCmd.Flags().IntVar(&wmnConcurrency, "concurrency", 8, "Sites checked in parallel")
	_ = toolsWhatsMyNameCmd.MarkFlagRequired("data")
	_ = toolsWhatsMyNameCmd.MarkFlagRequired("username")
	_ = toolsWhatsMyNameCmd.MarkFlagRequired("output")

	ToolsCmd.AddCommand(toolsWhatsMyNameCmd)
}

func runToolsWhatsMyName(cmd *cobra.Command, args []string) error {
	if wmnTimeout <= 0 {
		return errors.NewInvalidInputError("--timeout must be > 0, got %d", wmnTimeout)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.ComponentLogger("whatsmyname")

	ctx := cmd.Context()
	data, err := whatsmyname.LoadData(ctx, wmnData, log)
	if err != nil {
		return err
	}

	timeout := time.Duration(wmnTimeout) * time.Second
	client := httpclient.New(httpclient.Options{
		Timeout:         timeout,
		AllowPrivateIPs: !cfg.HTTP.BlockPrivateIPs,
	})
	checker := whatsmyname.NewChecker(whatsmyname.ClientDoer(client, cfg.HTTP.UserAgent), timeout, wmnConcurrency, log)
	report := checker.Run(ctx, data, wmnUsername)

	if err := whatsmyname.WriteReport(wmnOutput, report); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d match(es) written to %s\n", len(report.Results), wmnOutput)
	return nil
}
