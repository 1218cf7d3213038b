package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/footprint/errors"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(errors.NewInvalidInputError("bad phone")))
	assert.Equal(t, 130, exitCode(errors.Wrap(context.Canceled, "run interrupted")))
}

func TestRootRegistersCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"lookup", "plan", "sources", "runs", "names", "tools", "am", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-json"))
}
