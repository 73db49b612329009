// Package index implements the staging index:
// an ordered, binary-encoded list of file records
// describing the snapshot that the next commit will capture.
//
// The encoding is the "DIRC" version 2 format:
// a 12-byte header (signature, version, entry count, big-endian)
// followed by one variable-length record per entry.
// Each record is a fixed 62-byte block of metadata, hash, and flags,
// then the path bytes,
// then 1 to 4 NUL bytes bringing the record length to a multiple of 4.
//
// Entries are kept in the order their paths were first staged.
// They are never sorted.
package index

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
)

const (
	signature = "DIRC"
	version   = 2

	headerLen = 12
	fixedLen  = 62 // ten 4-byte fields, 20-byte hash, 2-byte flags

	// MaxPathLen is the largest path length the flags field can express.
	// Longer paths are stored in full, with this value in the flags.
	MaxPathLen = 0xFFF
)

// ErrCorrupt is the error for index data that cannot be decoded.
var ErrCorrupt = errors.New("corrupt index")

// Entry is one staged file.
// The metadata fields hold the low 32 bits of the file's stat values.
// Mode is not the raw st_mode: it is 0100755 if the file has any execute bit set and 0100644 otherwise.
type Entry struct {
	CtimeSec  uint32
	CtimeNsec uint32
	MtimeSec  uint32
	MtimeNsec uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32

	// Addr is the address of the blob holding the file's contents.
	Addr vcs.Addr

	// Flags holds the path length in its low 12 bits, capped at MaxPathLen.
	// The remaining bits are always zero.
	Flags uint16

	// Path is slash-separated and relative to the worktree root.
	Path string
}

// Flags computes the flags field for a path.
func Flags(path string) uint16 {
	n := len(path)
	if n > MaxPathLen {
		n = MaxPathLen
	}
	return uint16(n)
}

// Encode serializes entries, in the given order, with a header.
func Encode(entries []Entry) []byte {
	buf := make([]byte, 0, headerLen+len(entries)*(fixedLen+32))
	buf = append(buf, signature...)
	buf = binary.BigEndian.AppendUint32(buf, version)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))

	for _, e := range entries {
		start := len(buf)

		buf = binary.BigEndian.AppendUint32(buf, e.CtimeSec)
		buf = binary.BigEndian.AppendUint32(buf, e.CtimeNsec)
		buf = binary.BigEndian.AppendUint32(buf, e.MtimeSec)
		buf = binary.BigEndian.AppendUint32(buf, e.MtimeNsec)
		buf = binary.BigEndian.AppendUint32(buf, e.Dev)
		buf = binary.BigEndian.AppendUint32(buf, e.Ino)
		buf = binary.BigEndian.AppendUint32(buf, e.Mode)
		buf = binary.BigEndian.AppendUint32(buf, e.UID)
		buf = binary.BigEndian.AppendUint32(buf, e.GID)
		buf = binary.BigEndian.AppendUint32(buf, e.Size)
		buf = append(buf, e.Addr[:]...)
		buf = binary.BigEndian.AppendUint16(buf, Flags(e.Path))
		buf = append(buf, e.Path...)

		n := len(buf) - start
		buf = append(buf, make([]byte, padded(n)-n)...)
	}

	return buf
}

// padded is the length of a record whose unpadded length is n.
// There is always at least one NUL byte after the path.
func padded(n int) int {
	return n + 4 - n%4
}

// Decode parses encoded index data.
// It fails with ErrCorrupt (perhaps wrapped)
// unless data holds exactly the declared number of well-formed entries and nothing more.
func Decode(data []byte) ([]Entry, error) {
	if len(data) < headerLen {
		return nil, errors.Wrapf(ErrCorrupt, "%d-byte header is too short", len(data))
	}
	if string(data[:4]) != signature {
		return nil, errors.Wrapf(ErrCorrupt, "bad signature %q", data[:4])
	}
	if v := binary.BigEndian.Uint32(data[4:8]); v != version {
		return nil, errors.Wrapf(ErrCorrupt, "unsupported version %d", v)
	}
	count := binary.BigEndian.Uint32(data[8:12])

	// Every record takes at least fixedLen+2 bytes: a one-byte path and one NUL.
	// Checking this up front keeps a corrupt count from causing a huge allocation.
	if uint64(count)*(fixedLen+2) > uint64(len(data)-headerLen) {
		return nil, errors.Wrapf(ErrCorrupt, "%d entries cannot fit in %d bytes", count, len(data))
	}

	entries := make([]Entry, 0, count)
	offset := headerLen
	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(data[offset:])
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d at offset %d", i, offset)
		}
		entries = append(entries, e)
		offset += n
	}
	if offset != len(data) {
		return nil, errors.Wrapf(ErrCorrupt, "%d trailing bytes after %d entries", len(data)-offset, count)
	}

	return entries, nil
}

func decodeEntry(b []byte) (Entry, int, error) {
	if len(b) < fixedLen {
		return Entry{}, 0, errors.Wrapf(ErrCorrupt, "truncated record (%d bytes)", len(b))
	}

	u32 := func(i int) uint32 { return binary.BigEndian.Uint32(b[4*i:]) }

	e := Entry{
		CtimeSec:  u32(0),
		CtimeNsec: u32(1),
		MtimeSec:  u32(2),
		MtimeNsec: u32(3),
		Dev:       u32(4),
		Ino:       u32(5),
		Mode:      u32(6),
		UID:       u32(7),
		GID:       u32(8),
		Size:      u32(9),
		Addr:      vcs.AddrFromBytes(b[40:60]),
		Flags:     binary.BigEndian.Uint16(b[60:62]) & MaxPathLen,
	}

	var end int
	if n := int(e.Flags); n == MaxPathLen {
		nul := bytes.IndexByte(b[fixedLen:], 0)
		if nul < 0 {
			return Entry{}, 0, errors.Wrap(ErrCorrupt, "unterminated long path")
		}
		end = fixedLen + nul
		if end-fixedLen < MaxPathLen {
			return Entry{}, 0, errors.Wrapf(ErrCorrupt, "path length %d disagrees with flags", end-fixedLen)
		}
	} else {
		end = fixedLen + n
		if end > len(b) {
			return Entry{}, 0, errors.Wrapf(ErrCorrupt, "truncated path (want %d bytes, have %d)", n, len(b)-fixedLen)
		}
	}

	path := b[fixedLen:end]
	switch {
	case len(path) == 0:
		return Entry{}, 0, errors.Wrap(ErrCorrupt, "empty path")
	case bytes.IndexByte(path, 0) >= 0:
		return Entry{}, 0, errors.Wrapf(ErrCorrupt, "NUL in path %q", path)
	case !utf8.Valid(path):
		return Entry{}, 0, errors.Wrapf(ErrCorrupt, "path %q is not valid UTF-8", path)
	}
	e.Path = string(path)

	recLen := padded(end)
	if recLen > len(b) {
		return Entry{}, 0, errors.Wrapf(ErrCorrupt, "truncated padding after %s", e.Path)
	}
	for _, c := range b[end:recLen] {
		if c != 0 {
			return Entry{}, 0, errors.Wrapf(ErrCorrupt, "nonzero padding after %s", e.Path)
		}
	}

	return e, recLen, nil
}
