// Package runner checks that the profile's tool is installed and then runs a
// script file, or inline script text, against it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/andrej220/runscript/internal/actions"
	"github.com/andrej220/runscript/internal/tempscript"
	"github.com/andrej220/runscript/pkg/config"
	"github.com/andrej220/runscript/pkg/executor"
	"github.com/andrej220/runscript/pkg/lg"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Status lines shown in the job log.
const (
	MsgFromFile      = "ℹ️ Executing script from file..."
	MsgInline        = "ℹ️ Executing script that was passed..."
	MsgComplete      = "✅ Script execution complete."
	MsgFailed        = "🚨 Executing script failed."
	MsgCheckPath     = "🚨 Please check if the script path correct."
	MsgPassArguments = "🚨 Please pass either a command or a file containing commands."
)

var (
	ErrPathIncorrect   = errors.New("Path incorrect.")
	ErrNoArguments     = errors.New("No arguments passed.")
	ErrExecutionFailed = errors.New("script execution failed")
)

// Config parameterizes a Runner. TempDir is resolved once by the caller.
type Config struct {
	Profile config.Profile
	TempDir string
}

type Runner struct {
	cfg    Config
	exec   executor.Executor
	report actions.Reporter
	logger lg.Logger

	lookPath func(string) (string, error)
	fsys     afero.Fs
	now      func() time.Time
}

func New(cfg Config, exec executor.Executor, report actions.Reporter, logger lg.Logger) *Runner {
	if logger == nil {
		logger = lg.Discard
	}
	return &Runner{
		cfg:      cfg,
		exec:     exec,
		report:   report,
		logger:   logger,
		lookPath: executor.Which,
		fsys:     afero.NewOsFs(),
		now:      time.Now,
	}
}

// Run performs one invocation. Every outcome is reported through the
// Reporter; the returned error is the one handed to SetFailed, nil on success.
func (r *Runner) Run(ctx context.Context, req Request) error {
	logger := r.logger.With(lg.String("run", uuid.NewString()), lg.String("tool", r.cfg.Profile.Tool))
	ctx = lg.Attach(ctx, logger)

	toolPath, err := r.lookPath(r.cfg.Profile.Tool)
	if err != nil {
		return r.fail(logger, MsgFailed, err)
	}
	logger.Debug("tool located", lg.String("path", toolPath))

	if err := validate.Struct(req); err != nil {
		return r.fail(logger, MsgPassArguments, ErrNoArguments)
	}
	if req.ScriptPath != "" {
		return r.runFile(ctx, logger, req.ScriptPath)
	}
	return r.runInline(ctx, logger, req)
}

func (r *Runner) runFile(ctx context.Context, logger lg.Logger, path string) error {
	r.report.Info(MsgFromFile)
	logger = logger.With(lg.String("script", path))

	if !tempscript.Exists(r.fsys, path) {
		return r.fail(logger, MsgCheckPath, ErrPathIncorrect)
	}
	if err := r.fsys.Chmod(path, tempscript.Mode); err != nil {
		return r.fail(logger, MsgFailed, fmt.Errorf("chmod %s: %w", path, err))
	}
	if err := r.execute(ctx, r.fileInvocation(path)); err != nil {
		return r.fail(logger, MsgFailed, err)
	}
	r.report.Info(MsgComplete)
	logger.Info("script completed")
	return nil
}

// runInline owns the temp file it creates; the file is removed after the
// outcome has been reported, whatever that outcome is.
func (r *Runner) runInline(ctx context.Context, logger lg.Logger, req Request) (err error) {
	r.report.Info(MsgInline)

	ext := tempscript.ExtShell
	if req.PowerShell {
		ext = tempscript.ExtPowerShell
	}

	var file *tempscript.File
	defer func() { r.cleanup(logger, file) }()

	file, err = tempscript.Create(r.fsys, r.cfg.TempDir, r.cfg.Profile.TempPrefix, ext, req.Script, r.now())
	if err != nil {
		return r.fail(logger, MsgFailed, err)
	}
	logger = logger.With(lg.String("script", file.Path))

	if err := r.execute(ctx, r.inlineInvocation(file.Path, req.PowerShell)); err != nil {
		return r.fail(logger, MsgFailed, err)
	}
	r.report.Info(MsgComplete)
	logger.Info("script completed")
	return nil
}

func (r *Runner) execute(ctx context.Context, inv executor.Invocation) error {
	lg.FromContext(ctx).Debug("executing", lg.String("command", inv.String()))
	r.report.Debug("command: " + inv.String())
	if err := r.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	return nil
}

// fileInvocation picks the interpreter from the file extension.
func (r *Runner) fileInvocation(path string) executor.Invocation {
	return r.invocation(path, filepath.Ext(path) == "."+tempscript.ExtPowerShell)
}

// inlineInvocation picks the interpreter from the flag; the temp file
// extension was derived from the same flag.
func (r *Runner) inlineInvocation(path string, powershell bool) executor.Invocation {
	return r.invocation(path, powershell)
}

func (r *Runner) invocation(path string, powershell bool) executor.Invocation {
	p := r.cfg.Profile
	if powershell {
		return executor.Invocation{Program: p.PowerShell, Args: []string{p.PowerShellFileFlag, path}}
	}
	return executor.Invocation{Program: p.Shell, Args: []string{path}}
}

func (r *Runner) cleanup(logger lg.Logger, file *tempscript.File) {
	if err := file.Remove(); err != nil {
		r.report.Warning(err.Error())
		logger.Warn("temp script not removed", lg.Err(err))
		return
	}
	if file != nil {
		logger.Debug("temp script removed", lg.String("path", file.Path))
	}
}

func (r *Runner) fail(logger lg.Logger, msg string, err error) error {
	r.report.Error(msg)
	r.report.SetFailed(err)
	logger.Error("run failed", lg.Err(err))
	return err
}
