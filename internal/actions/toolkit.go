// Package actions speaks the GitHub Actions runner protocol: inputs arrive as
// INPUT_* environment variables and status leaves as workflow commands on stdout.
package actions

import (
	"io"
	"os"
	"sync"

	"github.com/sethvargo/go-githubactions"
)

// Reporter is the subset of the toolkit the runner reports through.
type Reporter interface {
	Info(msg string)
	Debug(msg string)
	Warning(msg string)
	Error(msg string)
	SetFailed(err error)
}

// Toolkit adds failure state on top of githubactions.Action. Messages are
// passed through verbatim, never as format strings.
type Toolkit struct {
	action *githubactions.Action
	getenv func(string) string

	mu     sync.Mutex
	failed error
}

var _ Reporter = (*Toolkit)(nil)

// New returns a Toolkit bound to the process stdout and environment.
func New() *Toolkit {
	return NewToolkit(os.Stdout, os.Getenv)
}

// NewToolkit writes workflow commands to out and reads inputs through getenv.
func NewToolkit(out io.Writer, getenv func(string) string) *Toolkit {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Toolkit{
		action: githubactions.New(githubactions.WithWriter(out), githubactions.WithGetenv(getenv)),
		getenv: getenv,
	}
}

// Input returns the trimmed value of the action input name, or "" when unset.
func (t *Toolkit) Input(name string) string {
	return t.action.GetInput(name)
}

// IsDebug reports whether step debug logging is enabled for the job.
func (t *Toolkit) IsDebug() bool {
	return t.getenv("RUNNER_DEBUG") == "1"
}

func (t *Toolkit) Info(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.action.Infof("%s", msg)
}

func (t *Toolkit) Debug(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.action.Debugf("%s", msg)
}

func (t *Toolkit) Warning(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.action.Warningf("%s", msg)
}

func (t *Toolkit) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.action.Errorf("%s", msg)
}

// SetFailed logs err as an error annotation and marks the action as failed.
// A nil err is ignored.
func (t *Toolkit) SetFailed(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = err
	t.action.Errorf("%s", err.Error())
}

// Failed returns the error passed to the last SetFailed call.
func (t *Toolkit) Failed() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// ExitCode is 1 once SetFailed has been called and 0 otherwise.
func (t *Toolkit) ExitCode() int {
	if t.Failed() != nil {
		return 1
	}
	return 0
}
