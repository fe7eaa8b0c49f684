package executor

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

var ErrToolNotFound = errors.New("unable to locate executable file")

// Which looks tool up on PATH and returns its absolute path.
func Which(tool string) (string, error) {
	if tool == "" {
		return "", fmt.Errorf("%w: tool name is empty", ErrToolNotFound)
	}
	p, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%w: %s. Please verify either the file path exists or the file can be found "+
			"within a directory specified by the PATH environment variable: %v", ErrToolNotFound, tool, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p, nil
	}
	return abs, nil
}
