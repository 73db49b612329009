package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
)

// ErrOutsideRoot is the error for staging a path that is not inside the worktree.
var ErrOutsideRoot = errors.New("path outside worktree")

// Stager turns worktree paths into index entries,
// writing each file's contents to a store as a blob along the way.
type Stager struct {
	// Root is the worktree root.
	Root string

	// Store receives the blobs.
	Store vcs.Store

	// Exclude, if non-nil, reports whether a slash-separated, root-relative path should be skipped.
	// An excluded directory is not descended into.
	Exclude func(rel string) bool
}

// ExcludeDir returns an exclusion predicate
// matching any path whose first component is name.
func ExcludeDir(name string) func(string) bool {
	return func(rel string) bool {
		first, _, _ := strings.Cut(rel, "/")
		return first == name
	}
}

// Stage captures an entry for each regular file named by paths.
// Relative paths are interpreted relative to s.Root.
// Directories are expanded recursively.
// Symlinks and other non-regular files are skipped.
//
// The entries are returned in the order encountered,
// with each path appearing at most once.
// Merge them into an existing index with Merge.
func (s *Stager) Stage(ctx context.Context, paths []string) ([]Entry, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving root %s", s.Root)
	}

	var (
		entries []Entry
		seen    = make(map[string]bool)
	)

	add := func(abs, rel string) error {
		if seen[rel] {
			return nil
		}
		seen[rel] = true

		e, ok, err := s.stageFile(ctx, abs, rel)
		if err != nil {
			return errors.Wrapf(err, "staging %s", rel)
		}
		if ok {
			entries = append(entries, e)
		}
		return nil
	}

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		p = filepath.Clean(p)

		rel, err := relPath(root, p)
		if err != nil {
			return nil, err
		}
		if rel != "" && s.excluded(rel) {
			continue
		}

		info, err := os.Lstat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "staging %s", p)
		}
		if !info.IsDir() {
			if err = add(p, rel); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err = ctx.Err(); err != nil {
				return err
			}
			rel, err := relPath(root, path)
			if err != nil {
				return err
			}
			if rel == "" {
				return nil
			}
			if s.excluded(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			return add(path, rel)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", p)
		}
	}

	return entries, nil
}

func (s *Stager) excluded(rel string) bool {
	return s.Exclude != nil && s.Exclude(rel)
}

// stageFile writes the blob for one file and captures its metadata.
// It reports false for anything but a regular file.
func (s *Stager) stageFile(ctx context.Context, abs, rel string) (Entry, bool, error) {
	st, mode, err := lstat(abs)
	if err != nil {
		return Entry{}, false, err
	}
	if !mode.IsRegular() {
		return Entry{}, false, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "reading contents")
	}
	addr, _, err := s.Store.Put(ctx, vcs.Blob, data)
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "storing blob")
	}
	return st.entry(rel, addr), true, nil
}

// relPath computes the slash-separated path of p relative to root.
// It is empty when p is root itself.
func relPath(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", errors.Wrapf(ErrOutsideRoot, "%s: %s", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsideRoot, "%s", p)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
