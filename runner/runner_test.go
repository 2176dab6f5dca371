package runner

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	requireTool(t, "echo")

	res, err := NewExecRunner().Run(context.Background(), Command{Name: "echo", Args: []string{"hello world"}})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hello world\n", res.Stdout)
}

func TestExecRunner_PassesStdin(t *testing.T) {
	requireTool(t, "cat")

	res, err := NewExecRunner().Run(context.Background(), Command{Name: "cat", Stdin: "piped text"})
	require.NoError(t, err)
	assert.Equal(t, "piped text", res.Stdout)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	requireTool(t, "sh")

	res, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo boom >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom\n", res.Stderr)
}

func TestExecRunner_WorkingDirectory(t *testing.T) {
	requireTool(t, "pwd")
	dir := t.TempDir()

	res, err := NewExecRunner().Run(context.Background(), Command{Name: "pwd", Dir: dir})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestExecRunner_Timeout(t *testing.T) {
	requireTool(t, "sleep")

	_, err := NewExecRunner().Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestExecRunner_TimeoutWithChildHoldingOutput(t *testing.T) {
	requireTool(t, "sh")
	requireTool(t, "sleep")

	r := &ExecRunner{WaitDelay: 200 * time.Millisecond}

	start := time.Now()
	// the background sleep inherits stdout and outlives the killed shell
	_, err := r.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 10 & wait"},
		Timeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewExecRunner_SetsWaitDelay(t *testing.T) {
	assert.Equal(t, DefaultWaitDelay, NewExecRunner().WaitDelay)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	res, err := NewExecRunner().Run(context.Background(), Command{Name: "definitely-not-a-real-tool-xyz"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Equal(t, -1, res.ExitCode)
}

func TestCommand_String(t *testing.T) {
	c := Command{Name: "pandoc", Args: []string{"in.docx", "-t", "plain"}}
	assert.Equal(t, "pandoc in.docx -t plain", c.String())
}
