package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hvml-run/hvmi/ops/sysvars"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom/loader"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.hvml>",
		Short: "Load and run an HVML program to completion",
		Long:  `hvmi run [--config=<path>] <file.hvml>`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
	return cmd
}

func runFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	e := newEngine()
	vd, err := loader.Load(data, e.rt.Atoms)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	co, err := e.runner.Spawn(vd, nil)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	sysvars.Bind(co.Scope, cfg)

	if err := e.runner.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	result := co.Result
	if result == nil {
		result = variant.NewUndefined()
	}
	rendered, err := variant.Serialize(result, "")
	if err != nil {
		return fmt.Errorf("serialize result: %w", err)
	}
	fmt.Println(rendered)
	return nil
}
