package repo

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/commit"
	"github.com/bobg/vcs/index"
	"github.com/bobg/vcs/refs"
	"github.com/bobg/vcs/tree"
)

// Tips is what committing needs from branch management:
// the current branch's tip, if any, and a way to move it.
type Tips interface {
	Current() (vcs.Addr, bool, error)
	Advance(vcs.Addr) error
}

var _ Tips = (*refs.Refs)(nil)

// Snapshot builds the tree for entries,
// writes a commit of it whose parent is the current tip,
// and advances the tip to the new commit.
func Snapshot(ctx context.Context, store vcs.Store, tips Tips, entries []index.Entry, message string, author, committer commit.Signature) (vcs.Addr, error) {
	root, err := tree.Build(ctx, store, entries)
	if err != nil {
		return vcs.Zero, errors.Wrap(err, "building tree")
	}
	parent, _, err := tips.Current()
	if err != nil {
		return vcs.Zero, errors.Wrap(err, "resolving parent")
	}
	addr, err := commit.Write(ctx, store, &commit.Commit{
		Tree:      root,
		Parent:    parent,
		Author:    author,
		Committer: committer,
		Message:   message,
	})
	if err != nil {
		return vcs.Zero, err
	}
	return addr, errors.Wrap(tips.Advance(addr), "advancing branch")
}
