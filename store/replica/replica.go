// Package replica implements an object store that fans writes out to several nested stores.
package replica

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = (*Store)(nil)

// Store is an object store that delegates reads and writes to two sets of nested stores.
// One set is synchronous:
// writes to all of these must succeed before a call to Put returns,
// and an error from any will cause Put to fail.
// The other set is asynchronous:
// a call to Put queues writes on these stores but does not wait for them to finish.
// However, if any asynchronous write encounters an error,
// the whole Store is put into an error state and further operations will fail.
type Store struct {
	sync   []vcs.Store
	async  []chan<- object
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu  sync.Mutex // protects err
	err error      // the error from an async goroutine, if any
}

type object struct {
	kind    vcs.Kind
	payload []byte
}

// New produces a new Store.
// The set of synchronous stores must be non-empty.
// The set of asynchronous stores may be empty.
// If there are any asynchronous stores,
// goroutines are launched for them,
// and canceling the given context object causes those to exit,
// placing the Store in an error state.
//
// The queue for each async store has length n, which must be 1 or greater.
// If any async store falls too far behind,
// Put blocks until all requests can be queued.
func New(ctx context.Context, sync []vcs.Store, async []vcs.Store, n int) *Store {
	result := &Store{sync: sync}
	if len(async) == 0 {
		return result
	}

	ctx, result.cancel = context.WithCancel(ctx)
	for _, a := range async {
		ch := make(chan object, n)
		result.async = append(result.async, ch)
		result.wg.Add(1)
		go result.runAsync(ctx, a, ch)
	}
	return result
}

// runAsync runs until ctx is canceled or a write fails.
func (s *Store) runAsync(ctx context.Context, nested vcs.Store, objs <-chan object) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return

		case obj, ok := <-objs:
			if !ok {
				return
			}
			if _, _, err := nested.Put(ctx, obj.kind, obj.payload); err != nil {
				s.setErr(err)
				s.cancel()
				return
			}
		}
	}
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Store) checkErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops queuing writes to the asynchronous stores
// and waits for the queued ones to finish.
// It returns the first error any asynchronous write encountered.
// Put must not be called after Close.
func (s *Store) Close() error {
	for _, ch := range s.async {
		close(ch)
	}
	s.async = nil
	s.wg.Wait()
	if s.cancel != nil {
		s.cancel()
	}
	err := s.checkErr()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Put implements vcs.Store.Put.
// The object is stored in all synchronous nested stores.
// An error from any of them causes Put to return an error.
// The added result is true if any synchronous store lacked the object.
//
// A write is also queued for each asynchronous nested store.
func (s *Store) Put(ctx context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	if err := s.checkErr(); err != nil {
		return vcs.Zero, false, errors.Wrap(err, "in async-store goroutine")
	}

	var (
		mu    sync.Mutex
		addr  vcs.Addr
		added bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, nested := range s.sync {
		nested := nested
		g.Go(func() error {
			a, ok, err := nested.Put(gctx, kind, payload)
			if err != nil {
				return err
			}
			mu.Lock()
			addr = a
			added = added || ok
			mu.Unlock()
			return nil
		})
	}

	obj := object{kind: kind, payload: append([]byte(nil), payload...)}
	for _, ch := range s.async {
		select {
		case <-ctx.Done():
			return vcs.Zero, false, ctx.Err()
		case ch <- obj:
		}
	}

	if err := g.Wait(); err != nil {
		return vcs.Zero, false, err
	}
	return addr, added, nil
}

// Get implements vcs.Getter.
// It tries each synchronous store in turn,
// returning the first result found.
func (s *Store) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	if err := s.checkErr(); err != nil {
		return "", nil, errors.Wrap(err, "in async-store goroutine")
	}

	err := vcs.ErrNotFound
	for _, nested := range s.sync {
		kind, payload, getErr := nested.Get(ctx, addr)
		if getErr == nil {
			return kind, payload, nil
		}
		if !errors.Is(getErr, vcs.ErrNotFound) {
			err = getErr
		}
	}
	return "", nil, err
}

// ListAddrs implements vcs.Getter.
// It produces the union of the addresses in the synchronous stores, in order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	if err := s.checkErr(); err != nil {
		return errors.Wrap(err, "in async-store goroutine")
	}

	seen := make(map[vcs.Addr]bool)
	var all []vcs.Addr
	for _, nested := range s.sync {
		err := nested.ListAddrs(ctx, start, func(addr vcs.Addr) error {
			if !seen[addr] {
				seen[addr] = true
				all = append(all, addr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	sortAddrs(all)
	for _, addr := range all {
		if err := f(addr); err != nil {
			return err
		}
	}
	return nil
}

func sortAddrs(addrs []vcs.Addr) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
		syncConfs, ok := store.List(conf, "sync")
		if !ok || len(syncConfs) == 0 {
			return nil, errors.New(`missing "sync" parameter`)
		}
		syncStores, err := createAll(ctx, syncConfs)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested sync store")
		}

		asyncConfs, _ := store.List(conf, "async")
		asyncStores, err := createAll(ctx, asyncConfs)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested async store")
		}

		queueLen, ok := store.Int(conf, "queuelen")
		if !ok {
			queueLen = 10
		}
		if queueLen < 1 {
			return nil, errors.Errorf("bad queue length %d", queueLen)
		}

		return New(ctx, syncStores, asyncStores, queueLen), nil
	})
}

func createAll(ctx context.Context, confs []map[string]interface{}) ([]vcs.Store, error) {
	var result []vcs.Store
	for _, conf := range confs {
		s, err := store.FromConfig(ctx, conf)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}
