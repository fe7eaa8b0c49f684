package tempscript

import (
	"os"

	"github.com/spf13/afero"
)

// writeExclusive creates name and writes data to it; an existing file is an error.
func writeExclusive(fsys afero.Fs, name string, data []byte, perm os.FileMode) error {
	f, err := fsys.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Exists reports whether name can be stat'ed.
func Exists(fsys afero.Fs, name string) bool {
	ok, err := afero.Exists(fsys, name)
	return err == nil && ok
}
