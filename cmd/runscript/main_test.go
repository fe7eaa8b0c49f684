package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrej220/runscript/internal/actions"
	"github.com/andrej220/runscript/pkg/config"
	"github.com/andrej220/runscript/pkg/executor"
	"github.com/andrej220/runscript/pkg/lg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	err  error
	runs []executor.Invocation
}

func (s *stubExecutor) Run(_ context.Context, inv executor.Invocation) error {
	s.runs = append(s.runs, inv)
	return s.err
}

type harness struct {
	app  *app
	out  *bytes.Buffer
	exec *stubExecutor
	cfg  *config.Config
}

func newHarness(t *testing.T, env map[string]string) *harness {
	t.Helper()
	var out bytes.Buffer
	getenv := func(k string) string { return env[k] }
	h := &harness{out: &out, exec: &stubExecutor{}}
	h.app = &app{
		toolkit:     actions.NewToolkit(&out, getenv),
		getenv:      getenv,
		viper:       config.NewViper(),
		newExecutor: func(io.Writer, io.Writer) executor.Executor { return h.exec },
		newLogger: func(cfg *config.Config) lg.Logger {
			h.cfg = cfg
			return lg.Discard
		},
	}
	return h
}

func (h *harness) execute(args ...string) error {
	cmd := newRootCmd(h.app)
	cmd.SetOut(h.out)
	cmd.SetErr(h.out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func shellTool(t *testing.T) string {
	t.Helper()
	if _, err := executor.Which("sh"); err != nil {
		t.Skip("sh not on PATH")
	}
	return "sh"
}

func TestRunInlineScript(t *testing.T) {
	tool := shellTool(t)
	tmp := t.TempDir()
	h := newHarness(t, map[string]string{
		"INPUT_CLI_MICROSOFT365_SCRIPT": "m365 status",
		"INPUT_IS_POWERSHELL":           "false",
		"RUNNER_TEMP":                   tmp,
	})

	require.NoError(t, h.execute("--tool", tool))

	assert.Equal(t, 0, h.app.toolkit.ExitCode())
	require.Len(t, h.exec.runs, 1)
	assert.Equal(t, "bash", h.exec.runs[0].Program)
	assert.Equal(t, tmp, filepath.Dir(h.exec.runs[0].Args[0]))
	assert.Contains(t, h.out.String(), "ℹ️ Executing script that was passed...\n✅ Script execution complete.\n")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRunnerDebug(t *testing.T) {
	tool := shellTool(t)
	h := newHarness(t, map[string]string{
		"INPUT_CLI_MICROSOFT365_SCRIPT": "m365 status",
		"RUNNER_TEMP":                   t.TempDir(),
		"RUNNER_DEBUG":                  "1",
	})

	require.NoError(t, h.execute("--tool", tool))

	require.NotNil(t, h.cfg)
	assert.True(t, h.cfg.Debug)
	require.Len(t, h.exec.runs, 1)
	assert.Contains(t, h.out.String(), "::debug::command: "+h.exec.runs[0].String()+"\n")
}

func TestRunDebugOffByDefault(t *testing.T) {
	tool := shellTool(t)
	h := newHarness(t, map[string]string{
		"INPUT_CLI_MICROSOFT365_SCRIPT": "m365 status",
		"RUNNER_TEMP":                   t.TempDir(),
	})

	require.NoError(t, h.execute("--tool", tool))

	require.NotNil(t, h.cfg)
	assert.False(t, h.cfg.Debug)
}

func TestRunScriptPathMissing(t *testing.T) {
	tool := shellTool(t)
	h := newHarness(t, map[string]string{"INPUT_CLI_MICROSOFT365_SCRIPT_PATH": "/missing.sh"})

	require.NoError(t, h.execute("--tool", tool))

	assert.Equal(t, 1, h.app.toolkit.ExitCode())
	assert.Empty(t, h.exec.runs)
	assert.Contains(t, h.out.String(), "::error::🚨 Please check if the script path correct.\n::error::Path incorrect.\n")
}

func TestRunExecutionFailure(t *testing.T) {
	tool := shellTool(t)
	h := newHarness(t, map[string]string{
		"INPUT_CLI_MICROSOFT365_SCRIPT": "exit 2",
		"RUNNER_TEMP":                   t.TempDir(),
	})
	h.exec.err = errors.New("The process 'bash' failed with exit code 2")

	require.NoError(t, h.execute("--tool", tool))

	assert.Equal(t, 1, h.app.toolkit.ExitCode())
	assert.Contains(t, h.out.String(), "::error::🚨 Executing script failed.")
	assert.Contains(t, h.out.String(), "failed with exit code 2")
}

func TestRunToolMissing(t *testing.T) {
	h := newHarness(t, map[string]string{"INPUT_CLI_MICROSOFT365_SCRIPT": "m365 status"})

	require.NoError(t, h.execute("--tool", "definitely-not-a-real-tool-4f1c"))

	assert.Equal(t, 1, h.app.toolkit.ExitCode())
	assert.Empty(t, h.exec.runs)
	assert.Contains(t, h.out.String(), "::error::🚨 Executing script failed.")
}

func TestRunNoInputs(t *testing.T) {
	tool := shellTool(t)
	h := newHarness(t, nil)

	require.NoError(t, h.execute("--tool", tool))

	assert.Equal(t, 1, h.app.toolkit.ExitCode())
	assert.Contains(t, h.out.String(), "::error::No arguments passed.")
}

func TestRunUnknownProfile(t *testing.T) {
	h := newHarness(t, nil)

	err := h.execute("--profile", "nope")

	assert.ErrorIs(t, err, config.ErrUnknownProfile)
}

func TestMetadataCommand(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.execute("metadata"))

	assert.Contains(t, h.out.String(), "CLI_MICROSOFT365_SCRIPT_PATH:")
	assert.Contains(t, h.out.String(), "IS_POWERSHELL:")
}

func TestMetadataCommandToFile(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(t.TempDir(), "action.yml")

	require.NoError(t, h.execute("metadata", "--tool", "o365", "-o", path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "name: o365 runscript")
}
