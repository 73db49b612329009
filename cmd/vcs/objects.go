package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/commit"
	"github.com/bobg/vcs/tree"
)

func (c maincmd) catFile(ctx context.Context, showType, pretty bool, args []string) error {
	if len(args) != 1 || showType == pretty {
		return errors.New("usage: cat-file (-t | -p) <address>")
	}
	addr, err := vcs.AddrFromHex(args[0])
	if err != nil {
		return errors.Wrapf(err, "decoding address %s", args[0])
	}

	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	kind, payload, err := r.Store().Get(ctx, addr)
	if err != nil {
		return errors.Wrapf(err, "getting %s", addr)
	}

	if showType {
		fmt.Println(kind)
		return nil
	}
	if kind == vcs.Tree {
		records, err := tree.Parse(payload)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil
	}
	_, err = os.Stdout.Write(payload)
	return errors.Wrap(err, "writing object to stdout")
}

func printRecords(records []tree.Record) {
	for _, rec := range records {
		kind := vcs.Blob
		if rec.IsDir() {
			kind = vcs.Tree
		}
		fmt.Printf("%06o %s %s\t%s\n", rec.Mode, kind, rec.Addr, rec.Name)
	}
}

func (c maincmd) lsTree(ctx context.Context, recurse bool, args []string) error {
	r, err := c.open(ctx)
	if err != nil {
		return err
	}

	var addr vcs.Addr
	if len(args) > 0 {
		if addr, err = vcs.AddrFromHex(args[0]); err != nil {
			return errors.Wrapf(err, "decoding address %s", args[0])
		}
	} else {
		var ok bool
		addr, ok, err = r.Refs().Current()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("current branch has no commits")
		}
	}

	// A commit address means its tree.
	kind, _, err := r.Store().Get(ctx, addr)
	if err != nil {
		return errors.Wrapf(err, "getting %s", addr)
	}
	if kind == vcs.Commit {
		cm, err := commit.Read(ctx, r.Store(), addr)
		if err != nil {
			return err
		}
		addr = cm.Tree
	}

	if recurse {
		return tree.Walk(ctx, r.Store(), addr, func(path string, rec tree.Record) error {
			fmt.Printf("%06o %s %s\t%s\n", rec.Mode, vcs.Blob, rec.Addr, path)
			return nil
		})
	}
	records, err := tree.Read(ctx, r.Store(), addr)
	if err != nil {
		return err
	}
	printRecords(records)
	return nil
}

func (c maincmd) writeTree(ctx context.Context, _ []string) error {	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	addr, err := r.WriteTree(ctx)
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

func (c maincmd) lsFiles(ctx context.Context, stage bool, _ []string) error {	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	entries, err := r.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if stage {
			fmt.Printf("%06o %s\t%s\n", e.Mode, e.Addr, e.Path)
		} else {
			fmt.Println(e.Path)
		}
	}
	return nil
}
