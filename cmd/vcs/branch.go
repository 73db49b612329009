package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) branch(ctx context.Context, del bool, args []string) error {
	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	refs := r.Refs()

	switch {
	case len(args) == 0 && !del:
		head, err := refs.Head()
		if err != nil {
			return err
		}
		names, err := refs.Branches()
		if err != nil {
			return err
		}
		for _, name := range names {
			mark := " "
			if name == head {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, name)
		}
		return nil

	case len(args) != 1:
		return errors.New("usage: branch [-d] [name]")

	case del:
		return refs.DeleteBranch(args[0])

	default:
		tip, _, err := refs.Current()
		if err != nil {
			return err
		}
		return refs.CreateBranch(args[0], tip)
	}
}

func (c maincmd) checkout(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: checkout <branch>")
	}

	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	if err = r.Refs().Checkout(args[0]); err != nil {
		return err
	}
	fmt.Printf("Switched to branch '%s'\n", args[0])
	return nil
}
