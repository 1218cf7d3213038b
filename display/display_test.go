package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommands() (*cobra.Command, *cobra.Command) {
	root := &cobra.Command{Use: "footprint"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "sources", Run: func(*cobra.Command, []string) {}}
	child.Flags().Bool("json", false, "")
	root.AddCommand(child)
	return root, child
}

func TestShouldOutputJSON(t *testing.T) {
	t.Run("nil command", func(t *testing.T) {
		assert.False(t, ShouldOutputJSON(nil))
	})

	t.Run("local flag", func(t *testing.T) {
		_, child := newCommands()
		require.NoError(t, child.Flags().Set("json", "true"))
		assert.True(t, ShouldOutputJSON(child))
	})

	t.Run("global flag", func(t *testing.T) {
		root, child := newCommands()
		require.NoError(t, root.PersistentFlags().Set("json", "true"))
		assert.True(t, ShouldOutputJSON(child))
	})

	t.Run("local false overrides global", func(t *testing.T) {
		root, child := newCommands()
		require.NoError(t, root.PersistentFlags().Set("json", "true"))
		require.NoError(t, child.Flags().Set("json", "false"))
		assert.False(t, ShouldOutputJSON(child))
	})

	t.Run("default off", func(t *testing.T) {
		_, child := newCommands()
		assert.False(t, ShouldOutputJSON(child))
	})
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"b": 2, "a": 1}))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", buf.String())
}

func TestTable_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, []string{"ID", "NAME"}, [][]string{{"github", "GitHub"}, {"orcid", "ORCID"}}))
	assert.Equal(t, "ID\tNAME\ngithub\tGitHub\norcid\tORCID\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}
