package index

import (
	"os"

	"github.com/bobg/vcs"
)

const (
	modeRegular = 0100644
	modeExec    = 0100755
)

// stat is file metadata at full platform width.
// Conversion to an Entry keeps only the low 32 bits of each field.
type stat struct {
	ctimeSec, ctimeNsec int64
	mtimeSec, mtimeNsec int64
	dev, ino            uint64
	mode                os.FileMode
	uid, gid            uint64
	size                int64
}

func (st stat) entry(path string, addr vcs.Addr) Entry {
	return Entry{
		CtimeSec:  uint32(st.ctimeSec),
		CtimeNsec: uint32(st.ctimeNsec),
		MtimeSec:  uint32(st.mtimeSec),
		MtimeNsec: uint32(st.mtimeNsec),
		Dev:       uint32(st.dev),
		Ino:       uint32(st.ino),
		Mode:      entryMode(st.mode),
		UID:       uint32(st.uid),
		GID:       uint32(st.gid),
		Size:      uint32(st.size),
		Addr:      addr,
		Flags:     Flags(path),
		Path:      path,
	}
}

// entryMode normalizes the permission bits of a regular file
// to one of the two modes the index records.
func entryMode(m os.FileMode) uint32 {
	if m.Perm()&0111 != 0 {
		return modeExec
	}
	return modeRegular
}
