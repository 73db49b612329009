// Package repo ties together a worktree, its control directory,
// the object store, the index, and the branch refs.
//
// A repository's control directory holds:
//
//	objects/          the object store
//	index             the staging index
//	index.lock        guards read-modify-write cycles of the index
//	HEAD              names the current branch
//	refs/heads/<b>    branch tips
//	config            ini-format settings
package repo

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/commit"
	"github.com/bobg/vcs/index"
	"github.com/bobg/vcs/refs"
	"github.com/bobg/vcs/store/file"
	"github.com/bobg/vcs/store/logging"
	"github.com/bobg/vcs/store/lru"
	"github.com/bobg/vcs/tree"
)

// ErrNoRepo is the error when no repository is found.
var ErrNoRepo = errors.New("not in a repository")

const (
	objectsDir = "objects"
	indexFile  = "index"
	lockFile   = "index.lock"
	configFile = "config"
)

// Repo is an open repository.
type Repo struct {
	root    string
	ctrl    string
	ctrlDir string // name of ctrl within root

	store vcs.Store
	refs  *refs.Refs
	conf  *Config

	flocker flock.Locker
}

// Init creates a repository in dir, or reinitializes one there, and opens it.
// Reinitializing leaves existing objects, refs, and config alone.
func Init(ctx context.Context, dir string, opts ...Option) (*Repo, error) {
	o := makeOptions(opts)
	ctrl := filepath.Join(dir, o.ctrlDir)

	if err := os.MkdirAll(filepath.Join(ctrl, objectsDir), 0755); err != nil {
		return nil, errors.Wrap(err, "creating object dir")
	}
	if err := refs.New(ctrl).Init(refs.DefaultBranch); err != nil {
		return nil, errors.Wrap(err, "initializing refs")
	}
	for _, name := range []string{configFile, lockFile} {
		if err := touch(filepath.Join(ctrl, name)); err != nil {
			return nil, err
		}
	}

	return Open(ctx, dir, opts...)
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	return f.Close()
}

// Find looks for a repository root in start and its ancestors.
func Find(start string, opts ...Option) (string, error) {
	o := makeOptions(opts)
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", start)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, o.ctrlDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(err, "checking %s", dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrNoRepo, "searching from %s", start)
		}
		dir = parent
	}
}

// Open opens the repository whose worktree root is root.
func Open(_ context.Context, root string, opts ...Option) (*Repo, error) {
	o := makeOptions(opts)

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}
	ctrl := filepath.Join(root, o.ctrlDir)
	if info, err := os.Stat(filepath.Join(ctrl, "HEAD")); err != nil || info.IsDir() {
		return nil, errors.Wrapf(ErrNoRepo, "%s", root)
	}

	conf, err := LoadConfig(filepath.Join(ctrl, configFile))
	if err != nil {
		return nil, err
	}

	s := o.store
	if s == nil {
		s = file.New(filepath.Join(ctrl, objectsDir))
	}
	if size := conf.CacheSize(); size > 0 {
		s, err = lru.New(s, size)
		if err != nil {
			return nil, errors.Wrap(err, "creating object cache")
		}
	}
	if o.logging {
		s = logging.New(s)
	}

	return &Repo{
		root:    root,
		ctrl:    ctrl,
		ctrlDir: o.ctrlDir,
		store:   s,
		refs:    refs.New(ctrl),
		conf:    conf,
	}, nil
}

// Root is the worktree root.
func (r *Repo) Root() string { return r.root }

// CtrlDir is the path of the control directory.
func (r *Repo) CtrlDir() string { return r.ctrl }

// Store is the object store.
func (r *Repo) Store() vcs.Store { return r.store }

// Refs gives access to the branches and HEAD.
func (r *Repo) Refs() *refs.Refs { return r.refs }

// Config is the repository config.
func (r *Repo) Config() *Config { return r.conf }

func (r *Repo) indexPath() string {
	return filepath.Join(r.ctrl, indexFile)
}

// withIndexLock runs f while holding the advisory lock on the index.
func (r *Repo) withIndexLock(f func() error) error {
	lockPath := filepath.Join(r.ctrl, lockFile)
	if err := touch(lockPath); err != nil {
		return err
	}
	if err := r.flocker.Lock(lockPath); err != nil {
		return errors.Wrap(err, "locking index")
	}
	defer r.flocker.Unlock(lockPath)

	return f()
}

// Add stages the given paths, which are relative to the worktree root unless absolute,
// and rewrites the index.
// Directories are staged recursively, without the control directory.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	return r.withIndexLock(func() error {
		existing, _, err := index.Load(r.indexPath())
		if err != nil {
			return err
		}
		s := &index.Stager{
			Root:    r.root,
			Store:   r.store,
			Exclude: index.ExcludeDir(r.ctrlDir),
		}
		incoming, err := s.Stage(ctx, paths)
		if err != nil {
			return err
		}
		return index.Save(r.indexPath(), index.Merge(existing, incoming))
	})
}

// Entries returns the contents of the index.
func (r *Repo) Entries() ([]index.Entry, error) {
	var entries []index.Entry
	err := r.withIndexLock(func() error {
		var err error
		entries, _, err = index.Load(r.indexPath())
		return err
	})
	return entries, err
}

// WriteTree stores the tree objects for the current index
// and returns the root tree's address.
func (r *Repo) WriteTree(ctx context.Context) (vcs.Addr, error) {
	entries, err := r.Entries()
	if err != nil {
		return vcs.Zero, err
	}
	return tree.Build(ctx, r.store, entries)
}

// Commit records the current index as a new commit on the current branch.
func (r *Repo) Commit(ctx context.Context, message string, author, committer commit.Signature) (vcs.Addr, error) {
	var addr vcs.Addr
	err := r.withIndexLock(func() error {
		entries, _, err := index.Load(r.indexPath())
		if err != nil {
			return err
		}
		addr, err = Snapshot(ctx, r.store, r.refs, entries, message, author, committer)
		return err
	})
	return addr, err
}

// Log calls f on each commit from the tip of the current branch back through its first parents.
// An unborn branch has no commits.
func (r *Repo) Log(ctx context.Context, f func(vcs.Addr, *commit.Commit) error) error {
	addr, ok, err := r.refs.Current()
	if err != nil {
		return err
	}
	for ok {
		c, err := commit.Read(ctx, r.store, addr)
		if err != nil {
			return err
		}
		if err = f(addr, c); err != nil {
			return err
		}
		addr, ok = c.Parent, !c.Parent.IsZero()
	}
	return nil
}
