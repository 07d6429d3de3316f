package command

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireShell skips the test when no POSIX shell is available.
func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// TestExecRun_Success verifies stdout capture on a zero exit.
func TestExecRun_Success(t *testing.T) {
	requireShell(t)

	res, err := (&Exec{}).Run(context.Background(), []string{"sh", "-c", "printf hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello", string(res.Stdout))
}

// TestExecRun_NonZeroExit verifies that a failing command is a result,
// not an error, and that its stdout and stderr are still captured.
func TestExecRun_NonZeroExit(t *testing.T) {
	requireShell(t)

	var stderr bytes.Buffer
	runner := &Exec{Stderr: &stderr}

	res, err := runner.Run(context.Background(), []string{"sh", "-c", "printf partial; echo oops >&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial", string(res.Stdout))
	assert.Equal(t, "oops\n", stderr.String())
}

// TestExecRun_Dir verifies the working directory is honoured.
func TestExecRun_Dir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	res, err := (&Exec{Dir: dir}).Run(context.Background(), []string{"sh", "-c", "pwd -P"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

// TestExecRun_StartFailure verifies that a missing binary is an error.
func TestExecRun_StartFailure(t *testing.T) {
	_, err := (&Exec{}).Run(context.Background(), []string{"mergepom-no-such-binary-xyz"})
	assert.Error(t, err)

	_, err = (&Exec{}).Run(context.Background(), nil)
	assert.Error(t, err)
}
