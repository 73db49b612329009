// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

type Store struct {
	s vcs.Store
}

func New(s vcs.Store) *Store {
	return &Store{s: s}
}

func (s *Store) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	kind, payload, err := s.s.Get(ctx, addr)
	if err != nil {
		log.Printf("ERROR Get %s: %s", addr, err)
	} else {
		log.Printf("Get %s (%s, %d bytes)", addr, kind, len(payload))
	}
	return kind, payload, err
}

func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	log.Printf("ListAddrs, start=%s", start)
	return s.s.ListAddrs(ctx, start, func(addr vcs.Addr) error {
		err := f(addr)
		if err != nil {
			log.Printf("  ERROR in ListAddrs: %s: %s", addr, err)
		} else {
			log.Printf("  ListAddrs: %s", addr)
		}
		return err
	})
}

func (s *Store) Put(ctx context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	addr, added, err := s.s.Put(ctx, kind, payload)
	if err != nil {
		log.Printf("ERROR in Put: %s", err)
	} else {
		log.Printf("Put %s %s, added=%v", kind, addr, added)
	}
	return addr, added, err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
		nested, err := store.Nested(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nested), nil
	})
}
