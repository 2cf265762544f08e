package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hvml-run/hvmi/ops/sysvars"
	"github.com/hvml-run/hvmi/renderer"
	"github.com/hvml-run/hvmi/vdom/loader"
)

func newServeCommand() *cobra.Command {
	var secretEnv string
	cmd := &cobra.Command{
		Use:   "serve <file.hvml>",
		Short: "Spawn an HVML program and keep it addressable via the renderer bridge",
		Long:  `hvmi serve [--config=<path>] <file.hvml>`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveFile(args[0], os.Getenv(secretEnv))
		},
	}
	cmd.Flags().StringVar(&secretEnv, "secret-env", "HVMI_RENDERER_SECRET", "environment variable holding the renderer bridge's JWT HMAC secret")
	return cmd
}

func serveFile(path string, secret string) error {
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

	runnerName := "main"
	if cfg != nil && cfg.RunnerName != "" {
		runnerName = cfg.RunnerName
	}
	srv := renderer.NewServer(cfg, e.rt, nil, []byte(secret))
	srv.RegisterRunner(runnerName, e.runner)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := renderer.InitTracing(ctx, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			advanced, runErr := e.runner.RunOne()
			if runErr != nil {
				fmt.Fprintln(os.Stderr, "hvmi: step error:", runErr)
			}
			if !advanced {
				// No ready coroutine: everything is waiting on an async
				// fetch/timer completion or is OBSERVING. Back off briefly
				// rather than spinning the scheduler loop.
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()

	return srv.ListenAndServe(ctx)
}
