// Package file implements an object store as a file hierarchy:
// one compressed object per file,
// sharded into subdirectories by the first two hex digits of the address.
package file

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

// Store is a file-based implementation of an object store.
type Store struct {
	root string
}

// New produces a new Store storing objects beneath `root`
// (conventionally the objects directory inside a repository's control directory).
func New(root string) *Store {
	return &Store{root: root}
}

// Root is the directory beneath which objects are stored.
func (s *Store) Root() string {
	return s.root
}

// Path is the file in which the object with the given address is (or would be) stored.
func (s *Store) Path(addr vcs.Addr) string {
	h := addr.String()
	return filepath.Join(s.root, h[:2], h[2:])
}

// Get gets the object with address `addr`.
func (s *Store) Get(_ context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	path := s.Path(addr)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, vcs.ErrNotFound
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "reading %s", path)
	}
	got, kind, payload, err := vcs.DecodeObject(data)
	if err != nil {
		return "", nil, errors.Wrapf(err, "decoding %s", path)
	}
	if got != addr {
		return "", nil, errors.Wrapf(vcs.ErrCorruptObject, "%s hashes to %s", path, got)
	}
	return kind, payload, nil
}

// Put adds an object to the store if it wasn't already present.
// The compressed bytes are written to a temporary file in the shard directory
// and renamed into place,
// so a reader never sees a partially written object.
func (s *Store) Put(_ context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	var (
		addr = vcs.AddrOf(kind, payload)
		path = s.Path(addr)
		dir  = filepath.Dir(path)
	)

	if _, err := os.Stat(path); err == nil {
		return addr, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return vcs.Zero, false, errors.Wrapf(err, "checking for %s", path)
	}

	_, data, err := vcs.EncodeObject(kind, payload)
	if err != nil {
		return vcs.Zero, false, err
	}

	if err = os.MkdirAll(dir, 0755); err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	f, err := os.CreateTemp(dir, "tmp_obj_")
	if err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpname := f.Name()
	defer os.Remove(tmpname) // no-op after a successful rename

	if _, err = f.Write(data); err != nil {
		f.Close()
		return vcs.Zero, false, errors.Wrapf(err, "writing data to %s", tmpname)
	}
	if err = f.Chmod(0444); err != nil {
		f.Close()
		return vcs.Zero, false, errors.Wrapf(err, "setting mode of %s", tmpname)
	}
	if err = f.Close(); err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "closing %s", tmpname)
	}
	if err = os.Rename(tmpname, path); err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "renaming %s to %s", tmpname, path)
	}

	return addr, true, nil
}

// ListAddrs produces all object addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	topLevel, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.root)
	}

	startHex := start.String()
	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 || !isHex(topName) {
			continue
		}

		objInfos, err := os.ReadDir(filepath.Join(s.root, topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", s.root, topName)
		}
		for _, objInfo := range objInfos {
			if err = ctx.Err(); err != nil {
				return err
			}
			if objInfo.IsDir() {
				continue
			}
			name := topName + objInfo.Name()
			if len(name) != 2*len(vcs.Zero) || name <= startHex {
				continue
			}
			addr, err := vcs.AddrFromHex(name)
			if err != nil {
				// Not an object, e.g. a leftover temp file.
				continue
			}
			if err = f(addr); err != nil {
				return err
			}
		}
	}
	return nil
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (vcs.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
