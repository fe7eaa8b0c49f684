package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andrej220/runscript/internal/actions"
	"github.com/andrej220/runscript/internal/runner"
	"github.com/andrej220/runscript/pkg/config"
	"github.com/andrej220/runscript/pkg/executor"
	"github.com/andrej220/runscript/pkg/lg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const SERVICENAME = "runscript"

// app carries the process-wide dependencies so tests can swap them.
type app struct {
	toolkit     *actions.Toolkit
	getenv      func(string) string
	viper       *viper.Viper
	newExecutor func(stdout, stderr io.Writer) executor.Executor
	newLogger   func(cfg *config.Config) lg.Logger

	configFile string
}

func newApp() *app {
	return &app{
		toolkit: actions.New(),
		getenv:  os.Getenv,
		viper:   config.NewViper(),
		newExecutor: func(stdout, stderr io.Writer) executor.Executor {
			return &executor.Process{Stdout: stdout, Stderr: stderr}
		},
		newLogger: func(cfg *config.Config) lg.Logger {
			return lg.New(&lg.Config{ServiceName: SERVICENAME, Debug: cfg.Debug, Format: cfg.LogFormat})
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "runscript",
		Short: "Run a script file or inline script against a CLI tool in GitHub Actions.",
		Long: `runscript is a GitHub Action entry point. It checks that the profile's CLI
tool is on PATH, then runs the script file named by the script path input, or
the inline script input, with bash or PowerShell.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "YAML config file with a custom profile")
	flags.String("profile", config.DefaultProfile, "built-in profile name")
	flags.String("tool", "", "override the CLI tool that must be on PATH")
	flags.String("temp-dir", "", "directory for inline scripts (default $RUNNER_TEMP or the OS temp dir)")
	flags.String("log-format", "console", "diagnostic log format: console or json")
	flags.Bool("debug", false, "enable debug diagnostics (also enabled by RUNNER_DEBUG=1)")

	for key, flag := range map[string]string{
		"profile.name": "profile",
		"profile.tool": "tool",
		"temp_dir":     "temp-dir",
		"log_format":   "log-format",
		"debug":        "debug",
	} {
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(newMetadataCmd(a))
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	a.viper.SetDefault("debug", a.toolkit.IsDebug())
	return config.Load(a.viper, a.configFile, a.getenv)
}

func (a *app) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Debug("config loaded",
		lg.String("profile", cfg.Profile.Name),
		lg.String("tempDir", cfg.TempDir))

	r := runner.New(
		runner.Config{Profile: cfg.Profile, TempDir: cfg.TempDir},
		a.newExecutor(stdout, stderr),
		a.toolkit,
		logger,
	)
	req := runner.RequestFromInputs(cfg.Profile, a.toolkit.Input, a.getenv)
	// the outcome is recorded on the toolkit
	_ = r.Run(ctx, req)
	return nil
}

func newMetadataCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the action.yml that declares the profile's inputs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			meta := config.Metadata(cfg.Profile)
			if output != "" {
				return config.WriteMetadata(output, meta)
			}
			b, err := config.MarshalMetadata(meta)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
