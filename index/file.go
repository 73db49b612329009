package index

import (
	"os"

	"github.com/pkg/errors"

	"github.com/bobg/vcs/internal/atomicfile"
)

// Load reads and decodes the index file at path.
// A missing file is not an error:
// it means nothing has been staged yet,
// and is reported as present == false.
func Load(path string) (entries []Entry, present bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}
	entries, err = Decode(data)
	if err != nil {
		return nil, true, errors.Wrapf(err, "decoding %s", path)
	}
	return entries, true, nil
}

// Save encodes entries and replaces the index file at path with them.
// The file is replaced by rename,
// so a crash mid-write leaves the previous index intact.
func Save(path string, entries []Entry) error {
	return atomicfile.WriteFile(path, Encode(entries), 0644)
}
