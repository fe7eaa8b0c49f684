package runner

import (
	"github.com/andrej220/runscript/pkg/config"
	"github.com/drone/envsubst"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request is what the action was asked to do. File mode wins when both
// ScriptPath and Script are set.
type Request struct {
	ScriptPath string `validate:"required_without=Script"`
	Script     string
	PowerShell bool
}

// RequestFromInputs reads the profile's inputs. ${VAR} references in the
// script path are expanded from getenv; a path that fails to expand is used as is.
func RequestFromInputs(p config.Profile, input, getenv func(string) string) Request {
	path := input(p.ScriptPathInput)
	if path != "" {
		if expanded, err := envsubst.Eval(path, getenv); err == nil {
			path = expanded
		}
	}
	return Request{
		ScriptPath: path,
		Script:     input(p.ScriptInput),
		PowerShell: input(p.PowerShellInput) == "true",
	}
}
