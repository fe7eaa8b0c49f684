package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ActionInput describes one entry under "inputs" in action.yml.
type ActionInput struct {
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default,omitempty"`
}

type ActionRuns struct {
	Using string `yaml:"using"`
	Image string `yaml:"image"`
}

// ActionMetadata is the action.yml document for a profile.
type ActionMetadata struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Inputs      map[string]ActionInput `yaml:"inputs"`
	Runs        ActionRuns             `yaml:"runs"`
}

// Metadata builds the action.yml document that declares p's inputs.
func Metadata(p Profile) ActionMetadata {
	desc := p.Description
	if desc == "" {
		desc = fmt.Sprintf("Run a script against %s", p.Tool)
	}
	return ActionMetadata{
		Name:        fmt.Sprintf("%s runscript", p.Tool),
		Description: desc,
		Inputs: map[string]ActionInput{
			p.ScriptPathInput: {
				Description: "Relative or absolute path to a script file to execute",
			},
			p.ScriptInput: {
				Description: fmt.Sprintf("Inline script of %s commands, used when no script path is given", p.Tool),
			},
			p.PowerShellInput: {
				Description: "Set to true when the inline script is PowerShell",
				Default:     "false",
			},
		},
		Runs: ActionRuns{Using: "docker", Image: "Dockerfile"},
	}
}

// MarshalMetadata renders m as YAML.
func MarshalMetadata(m ActionMetadata) ([]byte, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal action metadata: %w", err)
	}
	return b, nil
}

// WriteMetadata writes m to path through a temp file and rename, so readers
// never see a half-written action.yml.
func WriteMetadata(path string, m ActionMetadata) error {
	b, err := MarshalMetadata(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, b, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s with %s: %w", path, tmpPath, err)
	}
	return nil
}
