package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
)

func (c maincmd) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("nothing specified, nothing added")
	}

	r, err := c.open(ctx)
	if err != nil {
		return err
	}

	// Command-line paths are relative to the current directory,
	// not the worktree root.
	var paths []string
	for _, p := range args {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", p)
		}
		paths = append(paths, abs)
	}

	return r.Add(ctx, paths...)
}
