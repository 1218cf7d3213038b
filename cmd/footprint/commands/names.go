package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/display"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/names"
	"github.com/teranos/footprint/sym"
)

// NamesCmd expands a real name into username candidates and search dorks
var NamesCmd = &cobra.Command{
	Use:   "names",
	Short: sym.Names + " Generate username permutations and search dorks",
	Long: sym.Names + ` names — Expand a name into likely usernames and search queries

Permutations are ASCII-folded and deduplicated in order. Dork queries are
built per site from the full name, the keywords and the top permutations.

Examples:
  footprint names --first Ada --last Lovelace
  footprint names --first José --last Núñez --birth-year 1990 --site linkedin --keyword engineer`,
	RunE: runNames,
}

var (
	namesFirst     string
	namesLast      string
	namesBirthYear int
	namesLimit     int
	namesTop       int
	namesSites     []string
	namesKeywords  string
)

func init() {
	NamesCmd.Flags().StringVar(&namesFirst, "first", "", "First name")
	NamesCmd.Flags().StringVar(&namesLast, "last", "", "Last name")
	NamesCmd.Flags().IntVar(&namesBirthYear, "birth-year", 0, "Birth year for year-suffixed variants")
	NamesCmd.Flags().IntVar(&namesLimit, "limit", names.DefaultLimit, "Maximum permutations")
	NamesCmd.Flags().IntVar(&namesTop, "top", 5, "Permutations used in dork queries")
	NamesCmd.Flags().StringSliceVar(&namesSites, "site", names.SiteKeys(), "Dork sites ("+strings.Join(names.SiteKeys(), ", ")+")")
	NamesCmd.Flags().StringVar(&namesKeywords, "keyword", "", "Comma-separated keywords narrowing the dorks")
	NamesCmd.Flags().Bool("json", false, "Output as JSON")
}

type namesOutput struct {
	Permutations []string `json:"permutations"`
	Queries      []string `json:"queries"`
}

func runNames(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(namesFirst) == "" && strings.TrimSpace(namesLast) == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrInvalidInput, "no name given"),
			"pass --first and/or --last")
	}
	for _, s := range namesSites {
		if _, ok := names.Sites[s]; !ok {
			return errors.NewInvalidInputError("unknown dork site %q (known: %s)", s, strings.Join(names.SiteKeys(), ", "))
		}
	}

	perms := names.Permutations(namesFirst, namesLast, namesBirthYear, namesLimit)
	top := perms
	if namesTop >= 0 && len(top) > namesTop {
		top = top[:namesTop]
	}
	fullName := strings.Join(strings.Fields(namesFirst+" "+namesLast), " ")
	queries := names.DorkQueries(fullName, namesSites, names.SplitKeywords(namesKeywords), top)

	out := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		if perms == nil {
			perms = []string{}
		}
		return display.OutputJSON(out, namesOutput{Permutations: perms, Queries: queries})
	}
	fmt.Fprintln(out, "Permutations:")
	for _, p := range perms {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintln(out, "Queries:")
	for _, q := range queries {
		fmt.Fprintf(out, "  %s\n", q)
	}
	return nil
}
