package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/display"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/sources/builtin"
	"github.com/teranos/footprint/sym"
)

// SourcesCmd inspects the source registry
var SourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: sym.Source + " Inspect available sources",
	Long: sym.Source + ` sources — List and describe lookup sources

Shows the sources left after sources.enabled and sources.disabled are applied.

Examples:
  footprint sources list
  footprint sources list --json
  footprint sources info github`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled sources",
	RunE:  runSourcesList,
}

var sourcesInfoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Describe one source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesInfo,
}

func init() {
	sourcesListCmd.Flags().Bool("json", false, "Output sources as JSON")
	sourcesInfoCmd.Flags().Bool("json", false, "Output the source as JSON")

	SourcesCmd.AddCommand(sourcesListCmd)
	SourcesCmd.AddCommand(sourcesInfoCmd)
}

// sourceView is the printable description of a source
type sourceView struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Category  string             `json:"category"`
	Inputs    []schema.InputType `json:"supported_inputs"`
	Transport sources.Transport  `json:"transport"`
}

func viewOf(src sources.Source) sourceView {
	transport := sources.TransportHTTP
	if _, ok := sources.CanExecute(src); ok {
		transport = sources.TransportTool
	}
	inputs := src.SupportedInputs()
	if inputs == nil {
		inputs = []schema.InputType{}
	}
	return sourceView{
		ID:        src.ID(),
		Name:      src.Name(),
		Category:  src.Category(),
		Inputs:    inputs,
		Transport: transport,
	}
}

func joinInputs(inputs []schema.InputType) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = string(in)
	}
	return strings.Join(parts, ", ")
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := builtin.Registry(cfg)
	if err != nil {
		return err
	}

	views := []sourceView{}
	for _, src := range reg.List() {
		views = append(views, viewOf(src))
	}

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, views)
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.ID, v.Name, v.Category, joinInputs(v.Inputs), string(v.Transport)})
	}
	return display.Table(out, []string{"ID", "NAME", "CATEGORY", "INPUTS", "TRANSPORT"}, rows)
}

func runSourcesInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := builtin.Registry(cfg)
	if err != nil {
		return err
	}
	src, err := reg.MustGet(args[0])
	if err != nil {
		return err
	}

	v := viewOf(src)
	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(out, v)
	}
	fmt.Fprintf(out, "ID:        %s\nName:      %s\nCategory:  %s\nInputs:    %s\nTransport: %s\n",
		v.ID, v.Name, v.Category, joinInputs(v.Inputs), v.Transport)
	return nil
}
