// Command vcs is a minimal content-addressed version control tool.
//
// Usage:
//
//	vcs [-C dir] [-v] <subcommand> [args]
//
// Subcommands: init, add, commit, branch, checkout, log, cat-file,
// ls-files, ls-tree, write-tree, config, mirror.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/bobg/subcmd"
	"github.com/pkg/errors"

	"github.com/bobg/vcs/repo"
	_ "github.com/bobg/vcs/store/file"
	_ "github.com/bobg/vcs/store/gcs"
	_ "github.com/bobg/vcs/store/logging"
	_ "github.com/bobg/vcs/store/lru"
	_ "github.com/bobg/vcs/store/mem"
	_ "github.com/bobg/vcs/store/pg"
	_ "github.com/bobg/vcs/store/replica"
	_ "github.com/bobg/vcs/store/sqlite3"
)

type maincmd struct {
	verbose bool
}

func main() {
	var (
		dir     = flag.String("C", "", "run as if started in this directory")
		verbose = flag.Bool("v", false, "log object store operations")
	)
	flag.Parse()

	log.SetFlags(0)

	if *dir != "" {
		if err := os.Chdir(*dir); err != nil {
			log.Fatalf("Changing to %s: %s", *dir, err)
		}
	}

	err := subcmd.Run(context.Background(), maincmd{verbose: *verbose}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"add", c.add, nil,
		"branch", c.branch, subcmd.Params(
			"d", subcmd.Bool, false, "delete the named branch",
		),
		"cat-file", c.catFile, subcmd.Params(
			"t", subcmd.Bool, false, "show the object's kind",
			"p", subcmd.Bool, false, "pretty-print the object's contents",
		),
		"checkout", c.checkout, nil,
		"commit", c.commit, subcmd.Params(
			"m", subcmd.String, "", "commit message",
		),
		"config", c.config, nil,
		"init", c.initRepo, nil,
		"log", c.log, subcmd.Params(
			"n", subcmd.Int, 0, "show at most this many commits (0 for all)",
		),
		"ls-files", c.lsFiles, subcmd.Params(
			"s", subcmd.Bool, false, "show mode and blob address",
		),
		"ls-tree", c.lsTree, subcmd.Params(
			"r", subcmd.Bool, false, "list subtrees recursively",
		),
		"mirror", c.mirror, subcmd.Params(
			"config", subcmd.String, "", "path to JSON config for the mirror store(s)",
		),
		"write-tree", c.writeTree, nil,
	)
}

func (c maincmd) options() []repo.Option {
	return []repo.Option{repo.WithLogging(c.verbose)}
}

// open opens the repository containing the current directory.
func (c maincmd) open(ctx context.Context) (*repo.Repo, error) {
	root, err := repo.Find(".", c.options()...)
	if err != nil {
		return nil, err
	}
	r, err := repo.Open(ctx, root, c.options()...)
	return r, errors.Wrapf(err, "opening repository at %s", root)
}
