package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	require.Equal(t, "hvmi", root.Name())

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"run", "serve", "version"}, names)
}

func TestRootCommandHasConfigFlag(t *testing.T) {
	root := newRootCommand()
	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	require.Equal(t, "", flag.DefValue)
}

func TestPersistentPreRunLoadsConfig(t *testing.T) {
	cfg = nil
	configPath = ""
	root := newRootCommand()
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.NotNil(t, cfg)
	require.Equal(t, "main", cfg.RunnerName)
}
