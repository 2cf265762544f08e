package main

import (
	"github.com/hvml-run/hvmi/fetch"
	"github.com/hvml-run/hvmi/movebuffer/local"
	"github.com/hvml-run/hvmi/ops"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scheduler"
)

// engine bundles one process's interpreter wiring: the shared runtime
// handle, its dispatch table, and the single Runner this process
// hosts. hvmi runs exactly one runner per process; a multi-runner
// deployment is multiple hvmi processes pointed at the same
// movebuffer/redis bus.
type engine struct {
	rt      *runtime.Runtime
	runner  *scheduler.Runner
	fetcher *fetch.Fetcher
}

// newEngine wires a Runtime, the http/https/file/git/sftp
// fetch.Transports (s3 is not registered: fetch.NewS3Transport needs
// an endpoint and credentials that nothing here supplies), an
// in-process movebuffer.Bus, the full verb dispatch table, and the one
// Runner this process hosts.
func newEngine() *engine {
	rt := runtime.New()
	fetcher := fetch.New()
	fetcher.Register("http", fetch.NewHTTPTransport())
	fetcher.Register("https", fetch.NewHTTPTransport())
	fetcher.Register("file", fetch.FileTransport{})
	fetcher.Register("git", fetch.GitTransport{})
	fetcher.Register("sftp", fetch.NewSFTPTransport())

	maxMoving := 0
	if cfg != nil {
		maxMoving = cfg.MaxMovingMsgs
	}
	bus := local.New(maxMoving)

	table := ops.New(rt)
	runnerName := "main"
	if cfg != nil && cfg.RunnerName != "" {
		runnerName = cfg.RunnerName
	}
	runner := scheduler.NewRunner(runnerName, rt, table, bus, fetcher)

	return &engine{rt: rt, runner: runner, fetcher: fetcher}
}
