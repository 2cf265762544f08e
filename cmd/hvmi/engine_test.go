package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvml-run/hvmi/config"
	"github.com/hvml-run/hvmi/fetch"
)

func TestNewEngineRegistersTransportsAndRunner(t *testing.T) {
	old := cfg
	cfg = nil
	defer func() { cfg = old }()

	e := newEngine()
	require.NotNil(t, e.rt)
	require.NotNil(t, e.runner)
	require.NotNil(t, e.fetcher)

	for _, scheme := range []string{"http", "https", "file", "git", "sftp"} {
		_, err := e.fetcher.LoadAsync(scheme+"://unused", fetch.MethodLoad, nil, func(fetch.Result, error) {})
		// A registered transport either starts a real fetch (no
		// "no transport registered" error) or fails for scheme-specific
		// reasons (bad URI shape); either way it must not be rejected
		// for lacking a transport.
		if err != nil {
			require.NotContains(t, err.Error(), "no transport registered")
		}
	}
}

func TestNewEngineUsesConfiguredRunnerName(t *testing.T) {
	old := cfg
	cfg = &config.Config{RunnerName: "worker-1", MaxMovingMsgs: 8}
	defer func() { cfg = old }()

	e := newEngine()
	require.NotNil(t, e.runner)
	_, registered := e.rt.Runner(e.rt.Atoms.Intern("worker-1"))
	require.True(t, registered)
}
