// Package tempscript materializes inline script text as an executable file
// that the caller owns until Remove.
package tempscript

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

const (
	ExtShell      = "sh"
	ExtPowerShell = "ps1"

	// Mode is applied to generated scripts and to user-supplied script files.
	Mode = 0o755
)

// File is a script written for a single run.
type File struct {
	Path string
	fsys afero.Fs
}

// Name builds "<prefix>_<epoch-millis>.<ext>".
func Name(prefix string, now time.Time, ext string) string {
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}

// Create writes content verbatim to a new file dir/Name(prefix, now, ext) and
// marks it executable. When the file was written but chmod failed, the
// returned File is non-nil so the caller can still remove it.
func Create(fsys afero.Fs, dir, prefix, ext, content string, now time.Time) (*File, error) {
	path := filepath.Join(dir, Name(prefix, now, ext))
	if err := writeExclusive(fsys, path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("write script file %s: %w", path, err)
	}
	f := &File{Path: path, fsys: fsys}
	if err := fsys.Chmod(path, Mode); err != nil {
		return f, fmt.Errorf("chmod script file %s: %w", path, err)
	}
	return f, nil
}

// Remove deletes the file if it still exists. It is safe on a nil File.
func (f *File) Remove() error {
	if f == nil || f.Path == "" || !Exists(f.fsys, f.Path) {
		return nil
	}
	return f.fsys.Remove(f.Path)
}
