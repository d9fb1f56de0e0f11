package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "gen4ids", root.Use)
	assert.True(t, root.SilenceUsage)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"search", "encode", "detect", "kernel"})
}

func TestEncodeCommand(t *testing.T) {
	out, err := run(t, "encode", "4660", "43981")
	require.NoError(t, err)
	assert.Equal(t, "2882343476 (0xabcd1234)\n", out)
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	_, err := run(t, "encode", "65536", "0")
	assert.Error(t, err)
}

func TestSearchCommandMock(t *testing.T) {
	out, err := run(t, "search", "0", "0", "--backend", "mock", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestKernelCommand(t *testing.T) {
	out, err := run(t, "kernel")
	require.NoError(t, err)
	assert.Contains(t, out, "@workgroup_size(4, 4, 16)")
}

func TestParseIDs(t *testing.T) {
	tid, sid, err := parseIDs([]string{"1", "65535"})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), tid)
	assert.Equal(t, uint16(65535), sid)

	_, _, err = parseIDs([]string{"-1", "0"})
	assert.Error(t, err)
}
