package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) config(ctx context.Context, args []string) error {
	r, err := c.open(ctx)
	if err != nil {
		return err
	}
	conf := r.Config()

	switch {
	case len(args) == 2 && args[0] == "get":
		val, ok, err := conf.Get(args[1])
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("config key not found: %s", args[1])
		}
		fmt.Println(val)
		return nil

	case len(args) == 3 && args[0] == "set":
		return conf.Set(args[1], args[2])

	default:
		return errors.New("usage: config (get <key> | set <key> <value>)")
	}
}
