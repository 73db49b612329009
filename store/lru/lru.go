// Package lru implements an object store that acts as a least-recently-used cache for a nested object store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

// Store implements a memory-based least-recently-used cache for an object store.
// Writes pass through to the underlying store.
// Objects are immutable, so cached entries never go stale.
type Store struct {
	c *lru.Cache // Addr->object
	s vcs.Store
}

type object struct {
	kind    vcs.Kind
	payload []byte
}

// New produces a new Store backed by `s` and caching up to `size` objects.
func New(s vcs.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Get gets the object with address `addr`.
func (s *Store) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	if got, ok := s.c.Get(addr); ok {
		obj := got.(object)
		return obj.kind, append([]byte(nil), obj.payload...), nil
	}
	kind, payload, err := s.s.Get(ctx, addr)
	if err != nil {
		return "", nil, err
	}
	s.c.Add(addr, object{kind: kind, payload: payload})
	return kind, payload, nil
}

// Put adds an object to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	addr, added, err := s.s.Put(ctx, kind, payload)
	if err != nil {
		return addr, added, err
	}
	s.c.Add(addr, object{kind: kind, payload: append([]byte(nil), payload...)})
	return addr, added, nil
}

// ListAddrs produces all object addresses in the nested store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	return s.s.ListAddrs(ctx, start, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
		size, ok := store.Int(conf, "size")
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, err := store.Nested(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nested, size)
	})
}
