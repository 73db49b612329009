package repo

import "github.com/bobg/vcs"

// DefaultCtrlDir is the name of the control directory at the root of a worktree.
const DefaultCtrlDir = ".vcs"

type options struct {
	ctrlDir string
	store   vcs.Store
	logging bool
}

// Option is the type of an option to Init, Find, and Open.
type Option func(*options)

// WithCtrlDir sets the name of the control directory.
func WithCtrlDir(name string) Option {
	return func(o *options) {
		o.ctrlDir = name
	}
}

// WithStore replaces the object store under the control directory with s.
func WithStore(s vcs.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithLogging logs every object store operation.
func WithLogging(on bool) Option {
	return func(o *options) {
		o.logging = on
	}
}

func makeOptions(opts []Option) options {
	o := options{ctrlDir: DefaultCtrlDir}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
