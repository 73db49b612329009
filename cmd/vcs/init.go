package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/vcs/repo"
)

func (c maincmd) initRepo(ctx context.Context, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	r, err := repo.Init(ctx, dir, c.options()...)
	if err != nil {
		return errors.Wrapf(err, "initializing repository in %s", dir)
	}
	fmt.Printf("Initialized repository in %s\n", r.CtrlDir())
	return nil
}
