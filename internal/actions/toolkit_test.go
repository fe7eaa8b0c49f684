package actions

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestToolkit(env map[string]string) (*Toolkit, *bytes.Buffer) {
	var out bytes.Buffer
	return NewToolkit(&out, func(k string) string { return env[k] }), &out
}

func TestInput(t *testing.T) {
	tk, _ := newTestToolkit(map[string]string{
		"INPUT_CLI_MICROSOFT365_SCRIPT": "  m365 status \n",
		"INPUT_MY_INPUT":                "value",
	})

	assert.Equal(t, "m365 status", tk.Input("CLI_MICROSOFT365_SCRIPT"))
	assert.Equal(t, "value", tk.Input("my input"))
	assert.Equal(t, "", tk.Input("missing"))
}

func TestWorkflowCommands(t *testing.T) {
	tk, out := newTestToolkit(nil)

	tk.Info("ℹ️ Executing script from file...")
	tk.Debug("command: bash /tmp/x.sh")
	tk.Warning("line1\nline2")
	tk.Error("100% broken\r")

	want := "ℹ️ Executing script from file...\n" +
		"::debug::command: bash /tmp/x.sh\n" +
		"::warning::line1%0Aline2\n" +
		"::error::100%25 broken%0D\n"
	assert.Equal(t, want, out.String())
}

func TestMessagesAreNotFormatStrings(t *testing.T) {
	tk, out := newTestToolkit(nil)

	tk.Info("echo %s %d")

	assert.Equal(t, "echo %s %d\n", out.String())
}

func TestSetFailed(t *testing.T) {
	tk, out := newTestToolkit(nil)
	assert.Equal(t, 0, tk.ExitCode())

	tk.SetFailed(nil)
	assert.Equal(t, 0, tk.ExitCode())
	assert.Empty(t, out.String())

	cause := errors.New("Path incorrect.")
	tk.SetFailed(cause)
	assert.Equal(t, 1, tk.ExitCode())
	assert.ErrorIs(t, tk.Failed(), cause)
	assert.Equal(t, "::error::Path incorrect.\n", out.String())
}

func TestIsDebug(t *testing.T) {
	tk, _ := newTestToolkit(map[string]string{"RUNNER_DEBUG": "1"})
	assert.True(t, tk.IsDebug())

	tk, _ = newTestToolkit(nil)
	assert.False(t, tk.IsDebug())
}
