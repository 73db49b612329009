// Package atomicfile replaces files by writing a temporary sibling and renaming it into place,
// so that readers see either the old contents or the new, never a mixture.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFile writes data to a temporary file in the same directory as path,
// syncs it, and renames it to path.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", path)
	}
	tmpname := f.Name()
	defer os.Remove(tmpname) // no-op after a successful rename

	if _, err = f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", tmpname)
	}
	if err = f.Chmod(perm); err != nil {
		f.Close()
		return errors.Wrapf(err, "setting mode of %s", tmpname)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return errors.Wrapf(err, "syncing %s", tmpname)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmpname)
	}
	return errors.Wrapf(os.Rename(tmpname, path), "renaming %s to %s", tmpname, path)
}
