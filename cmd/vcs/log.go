package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/commit"
)

func (c maincmd) log(ctx context.Context, n int, _ []string) error {
	r, err := c.open(ctx)
	if err != nil {
		return err
	}

	errDone := errors.New("done")
	var count int
	err = r.Log(ctx, func(addr vcs.Addr, cm *commit.Commit) error {
		if n > 0 && count >= n {
			return errDone
		}
		count++
		fmt.Printf("commit %s\n", addr)
		fmt.Printf("Author: %s <%s>\n", cm.Author.Name, cm.Author.Email)
		fmt.Printf("Date:   %s\n\n", cm.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
		for _, line := range strings.Split(cm.Message, "\n") {
			fmt.Printf("    %s\n", line)
		}
		fmt.Println()
		return nil
	})
	if errors.Is(err, errDone) {
		return nil
	}
	return err
}
