package store

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/vcs"
)

// Sync synchronizes two or more stores.
// It runs ListAddrs on all input stores.
// When an address is found to be in some but not all stores,
// its object is added to the stores where it's missing.
// Objects are immutable and content-addressed,
// so no conflict between stores is possible.
func Sync(ctx context.Context, stores []vcs.Store) error {
	if len(stores) < 2 {
		return nil
	}

	type tuple struct {
		s    vcs.Store
		ch   <-chan vcs.Addr
		addr *vcs.Addr
	}

	// Canceling on return releases listers blocked on their channels.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx2 := errgroup.WithContext(ctx)

	tuples := make([]*tuple, 0, len(stores))
	for _, s := range stores {
		s := s
		ch := make(chan vcs.Addr)
		eg.Go(func() error {
			defer close(ch)
			return s.ListAddrs(ctx2, vcs.Zero, func(addr vcs.Addr) error {
				select {
				case <-ctx2.Done():
					return ctx2.Err()
				case ch <- addr:
				}
				return nil
			})
		})
		tuples = append(tuples, &tuple{s: s, ch: ch})
	}

	errch := make(chan error, 1)
	go func() {
		errch <- eg.Wait()
		close(errch)
	}()

	// Advance every stream once to prime the tuples,
	// then after each step advance only the streams whose current address was consumed.
	advance := tuples
	for {
		for _, tup := range advance {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case addr, ok := <-tup.ch:
				if ok {
					addr := addr
					tup.addr = &addr
				} else {
					tup.addr = nil
				}
			}
		}

		sort.SliceStable(tuples, func(i, j int) bool {
			ai, aj := tuples[i].addr, tuples[j].addr
			if ai == nil {
				return false
			}
			if aj == nil {
				return true
			}
			return ai.Less(*aj)
		})

		if tuples[0].addr == nil {
			// Every stream is exhausted.
			return <-errch
		}

		addr := *tuples[0].addr

		n := 1
		for n < len(tuples) && tuples[n].addr != nil && *tuples[n].addr == addr {
			n++
		}
		havers, needers := tuples[:n], tuples[n:]

		if len(needers) > 0 {
			kind, payload, err := havers[0].s.Get(ctx, addr)
			if err != nil {
				return errors.Wrapf(err, "getting object %s", addr)
			}
			for _, tup := range needers {
				if _, _, err = tup.s.Put(ctx, kind, payload); err != nil {
					return errors.Wrapf(err, "storing object %s", addr)
				}
			}
		}

		advance = append([]*tuple(nil), havers...)
	}
}
