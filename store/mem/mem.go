// Package mem implements an in-memory object store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

type object struct {
	kind    vcs.Kind
	payload []byte
}

// Store is a memory-based implementation of an object store.
type Store struct {
	mu      sync.Mutex
	objects map[vcs.Addr]object
}

// New produces a new Store.
func New() *Store {
	return &Store{
		objects: make(map[vcs.Addr]object),
	}
}

// Get gets the object with address `addr`.
func (s *Store) Get(_ context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[addr]
	if !ok {
		return "", nil, vcs.ErrNotFound
	}
	return obj.kind, append([]byte(nil), obj.payload...), nil
}

// Put adds an object to the store if it wasn't already present.
func (s *Store) Put(_ context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	addr := vcs.AddrOf(kind, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[addr]; ok {
		return addr, false, nil
	}
	s.objects[addr] = object{kind: kind, payload: append([]byte(nil), payload...)}
	return addr, true, nil
}

// Len is the number of objects in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ListAddrs produces all object addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	s.mu.Lock()
	addrs := make([]vcs.Addr, 0, len(s.objects))
	for addr := range s.objects {
		addrs = append(addrs, addr)
	}
	s.mu.Unlock()

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	index := sort.Search(len(addrs), func(n int) bool {
		return start.Less(addrs[n])
	})

	for i := index; i < len(addrs); i++ {
		if err := f(addrs[i]); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (vcs.Store, error) {
		return New(), nil
	})
}
