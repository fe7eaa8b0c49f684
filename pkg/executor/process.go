package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/andrej220/runscript/pkg/lg"
	"golang.org/x/sync/errgroup"
)

const maxLineSize = 1024 * 1024

// ExitError reports a child process that ran but exited non-zero.
type ExitError struct {
	Invocation Invocation
	Code       int
	Err        error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("The process '%s' failed with exit code %d", e.Invocation.Program, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Process runs invocations as local child processes and streams their output
// line by line. Stdin is not attached.
type Process struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
	Env    []string // nil inherits the current environment
}

var _ Executor = (*Process)(nil)

// NewProcess returns a Process writing child output to the current stdout and stderr.
func NewProcess() *Process {
	return &Process{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (p *Process) Run(ctx context.Context, inv Invocation) error {
	logger := lg.FromContext(ctx).With(lg.String("command", inv.String()))

	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = p.Dir
	cmd.Env = p.Env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", inv.Program, err)
	}
	logger.Debug("process started", lg.Int("pid", cmd.Process.Pid))

	var mu sync.Mutex
	var g errgroup.Group
	g.Go(func() error { return pumpLines(stdout, writerOr(p.Stdout, os.Stdout), &mu) })
	g.Go(func() error { return pumpLines(stderr, writerOr(p.Stderr, os.Stderr), &mu) })
	pumpErr := g.Wait()

	waitErr := cmd.Wait()
	logger.Debug("process finished", lg.Duration("elapsed", time.Since(start)))
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			return &ExitError{Invocation: inv, Code: ee.ExitCode(), Err: waitErr}
		}
		return fmt.Errorf("wait %s: %w", inv.Program, waitErr)
	}
	if pumpErr != nil {
		logger.Warn("output stream error", lg.Err(pumpErr))
	}
	return nil
}

// pumpLines copies r to w one line at a time so lines from stdout and stderr
// never interleave mid-line. A line longer than maxLineSize is forwarded in
// maxLineSize chunks; no bytes are dropped.
func pumpLines(r io.Reader, w io.Writer, mu *sync.Mutex) error {
	br := bufio.NewReaderSize(r, maxLineSize)
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			mu.Lock()
			_, werr := w.Write(chunk)
			mu.Unlock()
			if werr != nil {
				_, _ = io.Copy(io.Discard, br)
				return werr
			}
		}
		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("read output: %w", err)
		}
	}
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
