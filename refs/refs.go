// Package refs manages branch pointers and the HEAD reference in a repository's control directory.
//
// HEAD is a text file of the form "ref: refs/heads/<branch>".
// Each branch is a file under refs/heads holding the hex address of its tip commit,
// or nothing at all for a branch with no commits yet.
package refs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/internal/atomicfile"
)

// DefaultBranch is the branch HEAD names in a new repository.
const DefaultBranch = "main"

const (
	headFile   = "HEAD"
	headsDir   = "refs/heads"
	headPrefix = "ref: refs/heads/"
)

var (
	ErrNoBranch      = errors.New("no such branch")
	ErrBranchExists  = errors.New("branch exists")
	ErrCurrentBranch = errors.New("cannot delete the current branch")
	ErrInvalidName   = errors.New("invalid branch name")
)

// Refs is the set of refs in one control directory.
type Refs struct {
	dir string
}

// New produces a Refs for the control directory dir.
func New(dir string) *Refs {
	return &Refs{dir: dir}
}

// Init creates the refs directory and,
// unless HEAD already exists,
// an unborn branch with the given name and a HEAD that points to it.
func (r *Refs) Init(branch string) error {
	if err := ValidName(branch); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(r.dir, filepath.FromSlash(headsDir)), 0755); err != nil {
		return errors.Wrap(err, "creating refs dir")
	}
	_, err := os.Stat(filepath.Join(r.dir, headFile))
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "checking HEAD")
	}
	if err = r.CreateBranch(branch, vcs.Zero); err != nil && !errors.Is(err, ErrBranchExists) {
		return err
	}
	return r.writeHead(branch)
}

// Head returns the name of the branch HEAD points to.
func (r *Refs) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, headFile))
	if err != nil {
		return "", errors.Wrap(err, "reading HEAD")
	}
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, headPrefix) {
		return "", errors.Errorf("HEAD does not name a branch: %q", s)
	}
	branch := strings.TrimPrefix(s, headPrefix)
	if err = ValidName(branch); err != nil {
		return "", errors.Wrap(err, "in HEAD")
	}
	return branch, nil
}

// Tip returns the commit a branch points to.
// It reports false for a branch with no commits.
func (r *Refs) Tip(branch string) (vcs.Addr, bool, error) {
	if err := ValidName(branch); err != nil {
		return vcs.Zero, false, err
	}
	data, err := os.ReadFile(r.branchPath(branch))
	if errors.Is(err, fs.ErrNotExist) {
		return vcs.Zero, false, errors.Wrapf(ErrNoBranch, "%s", branch)
	}
	if err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "reading branch %s", branch)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return vcs.Zero, false, nil
	}
	addr, err := vcs.AddrFromHex(s)
	if err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "parsing branch %s", branch)
	}
	return addr, true, nil
}

// Current returns the tip of the branch HEAD points to.
// It reports false when that branch has no commits yet.
func (r *Refs) Current() (vcs.Addr, bool, error) {
	branch, err := r.Head()
	if err != nil {
		return vcs.Zero, false, err
	}
	return r.Tip(branch)
}

// Advance points the current branch at addr.
func (r *Refs) Advance(addr vcs.Addr) error {
	branch, err := r.Head()
	if err != nil {
		return err
	}
	return r.writeBranch(branch, addr)
}

// CreateBranch creates a branch pointing at addr,
// which may be the zero Addr for an unborn branch.
// HEAD is unchanged.
func (r *Refs) CreateBranch(name string, addr vcs.Addr) error {
	if err := ValidName(name); err != nil {
		return err
	}
	_, err := os.Stat(r.branchPath(name))
	if err == nil {
		return errors.Wrapf(ErrBranchExists, "%s", name)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "checking branch %s", name)
	}
	if err = os.MkdirAll(filepath.Dir(r.branchPath(name)), 0755); err != nil {
		return errors.Wrapf(err, "creating dir for branch %s", name)
	}
	return r.writeBranch(name, addr)
}

// DeleteBranch removes a branch other than the current one.
func (r *Refs) DeleteBranch(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head == name {
		return errors.Wrapf(ErrCurrentBranch, "%s", name)
	}
	err = os.Remove(r.branchPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrNoBranch, "%s", name)
	}
	return errors.Wrapf(err, "removing branch %s", name)
}

// Checkout points HEAD at an existing branch.
// The worktree and index are not touched.
func (r *Refs) Checkout(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if _, err := os.Stat(r.branchPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrNoBranch, "%s", name)
		}
		return errors.Wrapf(err, "checking branch %s", name)
	}
	return r.writeHead(name)
}

// Branches lists the branch names in sorted order.
func (r *Refs) Branches() ([]string, error) {
	root := filepath.Join(r.dir, filepath.FromSlash(headsDir))
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing branches")
	}
	sort.Strings(names)
	return names, nil
}

func (r *Refs) branchPath(name string) string {
	return filepath.Join(r.dir, filepath.FromSlash(headsDir), filepath.FromSlash(name))
}

func (r *Refs) writeBranch(name string, addr vcs.Addr) error {
	var content []byte
	if !addr.IsZero() {
		content = []byte(addr.String())
	}
	return errors.Wrapf(atomicfile.WriteFile(r.branchPath(name), content, 0644), "writing branch %s", name)
}

func (r *Refs) writeHead(branch string) error {
	return errors.Wrap(atomicfile.WriteFile(filepath.Join(r.dir, headFile), []byte(headPrefix+branch+"\n"), 0644), "writing HEAD")
}

// ValidName checks that name can be used as a branch name.
// Names are slash-separated, with no empty, "." or ".." components,
// and no whitespace, control characters, or leading dashes or dots.
func ValidName(name string) error {
	if name == "" || strings.HasPrefix(name, "-") {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".lock") {
			return errors.Wrapf(ErrInvalidName, "%q", name)
		}
	}
	if i := strings.IndexFunc(name, func(r rune) bool { return r <= ' ' || r == 0x7f || r == '\\' }); i >= 0 {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}
