// Package tree turns a flat list of index entries into a hierarchy of tree objects.
package tree

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/index"
)

// ModeDir is the mode recorded for a subtree.
const ModeDir = 040000

var (
	// ErrConflict is the error for index paths that cannot coexist in one tree,
	// such as a file and a directory with the same name.
	ErrConflict = errors.New("tree conflict")

	// ErrInvalidPath is the error for an index path with an empty, "." or ".." component.
	ErrInvalidPath = errors.New("invalid path")
)

// Record is one child of a tree object.
type Record struct {
	Mode uint32
	Name string
	Addr vcs.Addr
}

// IsDir tells whether r refers to a subtree.
func (r Record) IsDir() bool {
	return r.Mode == ModeDir
}

// node is an in-memory directory or file during Build.
type node struct {
	name     string
	mode     uint32
	addr     vcs.Addr // leaves only
	children []*node
	byName   map[string]int // position in children
}

func newDir(name string) *node {
	return &node{name: name, mode: ModeDir, byName: make(map[string]int)}
}

func (n *node) isDir() bool {
	return n.byName != nil
}

// Build writes one tree object per directory implied by entries
// and returns the address of the root tree.
//
// Children appear in each tree in the order they are first reached in entries.
// If entries cannot form a tree,
// Build returns ErrConflict or ErrInvalidPath before writing anything.
func Build(ctx context.Context, store vcs.Store, entries []index.Entry) (vcs.Addr, error) {
	root := newDir("")
	for _, e := range entries {
		if err := root.insert(e); err != nil {
			return vcs.Zero, err
		}
	}
	return root.write(ctx, store)
}

func (root *node) insert(e index.Entry) error {
	parts := strings.Split(e.Path, "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return errors.Wrapf(ErrInvalidPath, "%q", e.Path)
		}
	}

	dir := root
	for i, p := range parts[:len(parts)-1] {
		if pos, ok := dir.byName[p]; ok {
			child := dir.children[pos]
			if !child.isDir() {
				return errors.Wrapf(ErrConflict, "%s is a file, not a directory (in %s)", strings.Join(parts[:i+1], "/"), e.Path)
			}
			dir = child
			continue
		}
		child := newDir(p)
		dir.add(child)
		dir = child
	}

	name := parts[len(parts)-1]
	if pos, ok := dir.byName[name]; ok {
		if dir.children[pos].isDir() {
			return errors.Wrapf(ErrConflict, "%s is a directory, not a file", e.Path)
		}
		return errors.Wrapf(ErrConflict, "%s appears twice", e.Path)
	}
	dir.add(&node{name: name, mode: e.Mode, addr: e.Addr})
	return nil
}

func (n *node) add(child *node) {
	n.byName[child.name] = len(n.children)
	n.children = append(n.children, child)
}

// write stores the subtrees of n, then n itself.
func (n *node) write(ctx context.Context, store vcs.Store) (vcs.Addr, error) {
	records := make([]Record, 0, len(n.children))
	for _, child := range n.children {
		addr := child.addr
		if child.isDir() {
			var err error
			addr, err = child.write(ctx, store)
			if err != nil {
				return vcs.Zero, errors.Wrapf(err, "writing subtree %s", child.name)
			}
		}
		records = append(records, Record{Mode: child.mode, Name: child.name, Addr: addr})
	}
	addr, _, err := store.Put(ctx, vcs.Tree, Encode(records))
	return addr, err
}

// Encode produces the payload of a tree object holding the given records, in order.
func Encode(records []Record) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		fmt.Fprintf(&buf, "%06o %s\x00", r.Mode, r.Name)
		buf.Write(r.Addr[:])
	}
	return buf.Bytes()
}

// Parse decodes the payload of a tree object.
func Parse(payload []byte) ([]Record, error) {
	var records []Record
	for len(payload) > 0 {
		sp := bytes.IndexByte(payload, ' ')
		if sp <= 0 {
			return nil, errors.Wrap(vcs.ErrCorruptObject, "tree record without mode")
		}
		mode, err := strconv.ParseUint(string(payload[:sp]), 8, 32)
		if err != nil {
			return nil, errors.Wrapf(vcs.ErrCorruptObject, "tree record mode %q", payload[:sp])
		}
		payload = payload[sp+1:]

		nul := bytes.IndexByte(payload, 0)
		if nul <= 0 {
			return nil, errors.Wrap(vcs.ErrCorruptObject, "tree record without name")
		}
		name := string(payload[:nul])
		payload = payload[nul+1:]

		if len(payload) < len(vcs.Zero) {
			return nil, errors.Wrapf(vcs.ErrCorruptObject, "tree record %s truncated", name)
		}
		records = append(records, Record{
			Mode: uint32(mode),
			Name: name,
			Addr: vcs.AddrFromBytes(payload[:len(vcs.Zero)]),
		})
		payload = payload[len(vcs.Zero):]
	}
	return records, nil
}

// Read gets and parses the tree object at addr.
func Read(ctx context.Context, g vcs.Getter, addr vcs.Addr) ([]Record, error) {
	kind, payload, err := g.Get(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "getting tree %s", addr)
	}
	if kind != vcs.Tree {
		return nil, errors.Errorf("%s is a %s, not a tree", addr, kind)
	}
	records, err := Parse(payload)
	return records, errors.Wrapf(err, "parsing tree %s", addr)
}

// Walk calls f on each non-directory record reachable from the tree at addr,
// with its slash-separated path.
// Subtrees are visited depth-first, in record order.
func Walk(ctx context.Context, g vcs.Getter, addr vcs.Addr, f func(path string, r Record) error) error {
	return walk(ctx, g, addr, "", f)
}

func walk(ctx context.Context, g vcs.Getter, addr vcs.Addr, prefix string, f func(string, Record) error) error {
	records, err := Read(ctx, g, addr)
	if err != nil {
		return err
	}
	for _, r := range records {
		path := prefix + r.Name
		if r.IsDir() {
			if err = walk(ctx, g, r.Addr, path+"/", f); err != nil {
				return err
			}
			continue
		}
		if err = f(path, r); err != nil {
			return err
		}
	}
	return nil
}
