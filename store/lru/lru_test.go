package lru

import (
	"context"
	"testing"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store/mem"
	"github.com/bobg/vcs/testutil"
)

func TestStore(t *testing.T) {
	s, err := New(mem.New(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	testutil.ReadWrite(context.Background(), t, s)
}

type countingStore struct {
	vcs.Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	c.gets++
	return c.Store.Get(ctx, addr)
}

func TestCaching(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = &countingStore{Store: mem.New()}
	)

	addr, _, err := nested.Put(ctx, vcs.Blob, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(nested, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		kind, payload, err := s.Get(ctx, addr)
		if err != nil {
			t.Fatal(err)
		}
		if kind != vcs.Blob || string(payload) != "x" {
			t.Errorf("got %s %q", kind, payload)
		}
	}
	if nested.gets != 1 {
		t.Errorf("nested store got %d calls, want 1", nested.gets)
	}
}
