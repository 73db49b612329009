//go:build linux || darwin

package index

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func lstat(path string) (stat, os.FileMode, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return stat{}, 0, errors.Wrapf(&os.PathError{Op: "lstat", Path: path, Err: err}, "getting metadata")
	}
	info, err := os.Lstat(path)
	if err != nil {
		return stat{}, 0, errors.Wrapf(err, "getting metadata")
	}
	return stat{
		ctimeSec:  int64(st.Ctim.Sec),
		ctimeNsec: int64(st.Ctim.Nsec),
		mtimeSec:  int64(st.Mtim.Sec),
		mtimeNsec: int64(st.Mtim.Nsec),
		dev:       uint64(st.Dev),
		ino:       uint64(st.Ino),
		mode:      info.Mode(),
		uid:       uint64(st.Uid),
		gid:       uint64(st.Gid),
		size:      int64(st.Size),
	}, info.Mode(), nil
}
