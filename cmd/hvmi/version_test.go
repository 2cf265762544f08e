package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommandPrintsVersion(t *testing.T) {
	old := version
	version = "1.2.3"
	defer func() { version = old }()

	cmd := newVersionCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())
	require.Equal(t, "1.2.3\n", out.String())
}
