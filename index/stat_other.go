//go:build !linux && !darwin

package index

import (
	"os"

	"github.com/pkg/errors"
)

// Without a unix stat structure,
// ctime falls back to mtime and the device, inode, and owner fields are zero.
func lstat(path string) (stat, os.FileMode, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return stat{}, 0, errors.Wrapf(err, "getting metadata")
	}
	mt := info.ModTime()
	return stat{
		ctimeSec:  mt.Unix(),
		ctimeNsec: int64(mt.Nanosecond()),
		mtimeSec:  mt.Unix(),
		mtimeNsec: int64(mt.Nanosecond()),
		mode:      info.Mode(),
		size:      info.Size(),
	}, info.Mode(), nil
}
