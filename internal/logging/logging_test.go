package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpen_Files verifies that both streams are redirected to files and
// that log levels are split between them.
func TestOpen_Files(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "stdout.log")
	errPath := filepath.Join(dir, "stderr.log")

	// Pre-existing content must be truncated.
	require.NoError(t, os.WriteFile(outPath, []byte("stale\n"), 0644))

	var procOut, procErr bytes.Buffer
	sinks, err := Open(Options{StdoutPath: outPath, StderrPath: errPath}, &procOut, &procErr)
	require.NoError(t, err)

	_, _ = sinks.Out.Write([]byte("plain line\n"))
	sinks.Logger.Info("merging")
	sinks.Logger.Debug("hidden without verbose")
	sinks.Logger.Warn("bad pom")
	require.NoError(t, sinks.Close())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	errLog, err := os.ReadFile(errPath)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "stale")
	assert.Contains(t, string(out), "plain line")
	assert.Contains(t, string(out), "merging")
	assert.NotContains(t, string(out), "hidden without verbose")
	assert.NotContains(t, string(out), "bad pom")
	assert.Contains(t, string(errLog), "bad pom")

	assert.Empty(t, procOut.String(), "process streams must stay untouched")
	assert.Empty(t, procErr.String())
}

// TestOpen_StreamPath verifies the "-" target and verbose mode.
func TestOpen_StreamPath(t *testing.T) {
	var procOut, procErr bytes.Buffer
	sinks, err := Open(Options{StdoutPath: StreamPath, StderrPath: "", Verbose: true}, &procOut, &procErr)
	require.NoError(t, err)

	sinks.Logger.Debug("debug entry")
	sinks.Logger.Error("error entry")
	require.NoError(t, sinks.Close())

	assert.Contains(t, procOut.String(), "debug entry")
	assert.Contains(t, procErr.String(), "error entry")
}

// TestOpen_MissingDirectory verifies that optional (legacy default) paths
// fall back to the process stream while explicit ones fail.
func TestOpen_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.log")

	var procOut bytes.Buffer
	sinks, err := Open(Options{StdoutPath: missing, StderrPath: StreamPath, Optional: []string{missing}}, &procOut, &bytes.Buffer{})
	require.NoError(t, err)
	_, _ = sinks.Out.Write([]byte("to process stream"))
	require.NoError(t, sinks.Close())
	assert.Equal(t, "to process stream", procOut.String())

	_, err = Open(Options{StdoutPath: missing, StderrPath: StreamPath}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
