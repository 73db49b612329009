package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

func (c maincmd) commit(ctx context.Context, msg string, args []string) error {
	if len(args) > 0 {
		return errors.New("usage: commit -m <message>")
	}
	if msg == "" {
		return errors.New("missing -m")
	}

	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	sig, err := r.Config().Identity(time.Now())
	if err != nil {
		return err
	}
	addr, err := r.Commit(ctx, msg, sig, sig)
	if err != nil {
		return errors.Wrap(err, "committing")
	}

	branch, err := r.Refs().Head()
	if err != nil {
		return err
	}
	fmt.Printf("[%s %s] %s\n", branch, addr.String()[:7], msg)
	return nil
}
