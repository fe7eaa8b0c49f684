// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "RUNSCRIPT"
	DefaultProfile = "m365"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	validate          = validator.New()
)

// Profile binds the runner to one CLI tool: which binary must be on PATH,
// which action inputs carry the script, and how interpreters are invoked.
type Profile struct {
	Name               string `mapstructure:"name" yaml:"name" validate:"required"`
	Description        string `mapstructure:"description" yaml:"description"`
	Tool               string `mapstructure:"tool" yaml:"tool" validate:"required"`
	ScriptPathInput    string `mapstructure:"script_path_input" yaml:"script_path_input" validate:"required"`
	ScriptInput        string `mapstructure:"script_input" yaml:"script_input" validate:"required,nefield=ScriptPathInput"`
	PowerShellInput    string `mapstructure:"powershell_input" yaml:"powershell_input" validate:"required,nefield=ScriptInput,nefield=ScriptPathInput"`
	TempPrefix         string `mapstructure:"temp_prefix" yaml:"temp_prefix" validate:"required,excludesall=/\\"`
	Shell              string `mapstructure:"shell" yaml:"shell" validate:"required"`
	PowerShell         string `mapstructure:"powershell" yaml:"powershell" validate:"required"`
	PowerShellFileFlag string `mapstructure:"powershell_file_flag" yaml:"powershell_file_flag" validate:"required"`
}

// Config is everything the binary needs for one run.
type Config struct {
	Profile   Profile `mapstructure:"profile"`
	TempDir   string  `mapstructure:"temp_dir" validate:"required"`
	LogFormat string  `mapstructure:"log_format" validate:"oneof=console json"`
	Debug     bool    `mapstructure:"debug"`
}

var builtin = map[string]Profile{
	"m365": {
		Name:               "m365",
		Description:        "Run a script against CLI for Microsoft 365",
		Tool:               "m365",
		ScriptPathInput:    "CLI_MICROSOFT365_SCRIPT_PATH",
		ScriptInput:        "CLI_MICROSOFT365_SCRIPT",
		PowerShellInput:    "IS_POWERSHELL",
		TempPrefix:         "CLI_MICROSOFT365_GITHUB_ACTION",
		Shell:              "bash",
		PowerShell:         "pwsh",
		PowerShellFileFlag: "-f",
	},
}

// Builtin returns the named built-in profile.
func Builtin(name string) (Profile, bool) {
	p, ok := builtin[name]
	return p, ok
}

// BuiltinNames lists built-in profile names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveTempDir returns RUNNER_TEMP when set, otherwise the OS temp directory.
func ResolveTempDir(getenv func(string) string) string {
	if dir := getenv("RUNNER_TEMP"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// NewViper returns a viper instance reading RUNSCRIPT_* variables, e.g.
// RUNSCRIPT_PROFILE_TOOL for profile.tool.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("profile.name", DefaultProfile)
	v.SetDefault("log_format", "console")
	return v
}

// Load reads configFile (if any) into v, fills the gaps from the selected
// built-in profile and the runner environment, and validates the result.
// The debug default is the caller's; it knows how the runner signals it.
// Precedence follows viper: flags, env, file, defaults.
func Load(v *viper.Viper, configFile string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	name := v.GetString("profile.name")
	if base, ok := Builtin(name); ok {
		setProfileDefaults(v, base)
	} else if configFile == "" {
		return nil, fmt.Errorf("%w %q (built-in: %s)", ErrUnknownProfile, name, strings.Join(BuiltinNames(), ", "))
	} else {
		// custom profile: every key must come from the file, env or flags,
		// but AutomaticEnv only sees keys viper already knows about
		setProfileDefaults(v, Profile{Name: name})
	}
	v.SetDefault("temp_dir", ResolveTempDir(getenv))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config and its profile.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setProfileDefaults(v *viper.Viper, p Profile) {
	v.SetDefault("profile.name", p.Name)
	v.SetDefault("profile.description", p.Description)
	v.SetDefault("profile.tool", p.Tool)
	v.SetDefault("profile.script_path_input", p.ScriptPathInput)
	v.SetDefault("profile.script_input", p.ScriptInput)
	v.SetDefault("profile.powershell_input", p.PowerShellInput)
	v.SetDefault("profile.temp_prefix", p.TempPrefix)
	v.SetDefault("profile.shell", p.Shell)
	v.SetDefault("profile.powershell", p.PowerShell)
	v.SetDefault("profile.powershell_file_flag", p.PowerShellFileFlag)
}
