package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["run"])
	assert.True(t, names["ingest"])
	assert.True(t, names["serve"])
}

func TestRunCommandFlags(t *testing.T) {
	flags := []string{
		"config", "job", "job-url", "snapshot", "canon-config",
		"families-config", "max-bullets", "max-iterations", "threshold",
		"chroma-url", "collection", "api-key", "use-browser", "verbose",
		"rewrite", "db-url", "out",
	}

	for _, name := range flags {
		assert.NotNil(t, runCommand.Flags().Lookup(name), "missing flag: %s", name)
	}
}
