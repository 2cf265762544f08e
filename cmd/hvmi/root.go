package main

import (
	"github.com/spf13/cobra"

	"github.com/hvml-run/hvmi/config"
)

// cfg is the process-wide configuration, loaded once in
// PersistentPreRunE and consulted by every subcommand, mirroring the
// teacher's cmd_v2 package-level `cfg` loaded ahead of each command's
// Run.
var cfg *config.Config

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hvmi",
		Short:         "Run HVML programs against the interpreter core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (optional)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command, returning any error a subcommand
// reports instead of calling os.Exit itself, so main stays the only
// place that terminates the process.
func Execute() error {
	return newRootCommand().Execute()
}
