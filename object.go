package vcs

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bobg/vcs/compress"
)

// Frame prefixes payload with its "<kind> <length>\0" header.
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// ParseFrame is the inverse of Frame.
// The returned payload aliases framed.
func ParseFrame(framed []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return "", nil, errors.Wrap(ErrCorruptObject, "missing header terminator")
	}
	header := framed[:nul]
	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return "", nil, errors.Wrapf(ErrCorruptObject, "malformed header %q", header)
	}
	kind := Kind(header[:sp])
	if !kind.Valid() {
		return "", nil, errors.Wrapf(ErrCorruptObject, "unknown object kind %q", kind)
	}
	size, err := strconv.Atoi(string(header[sp+1:]))
	if err != nil {
		return "", nil, errors.Wrapf(ErrCorruptObject, "malformed size in header %q", header)
	}
	payload := framed[nul+1:]
	if size != len(payload) {
		return "", nil, errors.Wrapf(ErrCorruptObject, "header declares %d bytes, payload has %d", size, len(payload))
	}
	return kind, payload, nil
}

// Codec is the compressor applied to every persisted object.
var Codec compress.Compressor = compress.Zlib{}

// EncodeObject frames, hashes, and compresses an object,
// producing its address and the bytes to persist.
func EncodeObject(kind Kind, payload []byte) (Addr, []byte, error) {
	framed := Frame(kind, payload)
	addr := Hash(framed)
	data, err := Codec.Compress(framed)
	if err != nil {
		return Zero, nil, errors.Wrapf(err, "compressing %s %s", kind, addr)
	}
	return addr, data, nil
}

// DecodeObject is the inverse of EncodeObject.
// It also reports the address of the decoded bytes,
// which callers should compare with the address they asked for.
func DecodeObject(data []byte) (Addr, Kind, []byte, error) {
	framed, err := Codec.Uncompress(data)
	if err != nil {
		return Zero, "", nil, errors.Wrapf(ErrCorruptObject, "decompressing: %s", err)
	}
	kind, payload, err := ParseFrame(framed)
	if err != nil {
		return Zero, "", nil, err
	}
	return Hash(framed), kind, payload, nil
}
