package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageListsAutomigrateFirst(t *testing.T) {
	var buf bytes.Buffer
	flag.CommandLine.SetOutput(&buf)
	t.Cleanup(func() { flag.CommandLine.SetOutput(nil) })

	usage()

	out := buf.String()
	commands := out[strings.Index(out, "commands:"):]
	first := strings.Fields(strings.SplitN(commands, "\n", 3)[1])[0]
	assert.Equal(t, "automigrate", first)
	assert.Contains(t, out, "STOCKROOM_DB_DRIVER=sqlite")
}

func TestRunGooseRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	err := runGoose(ctx, nil, "version", "migrations", "")
	require.ErrorContains(t, err, "missing -version")

	err = runGoose(ctx, nil, "sideways", "migrations", "")
	require.ErrorContains(t, err, `unknown -cmd value "sideways"`)
}
