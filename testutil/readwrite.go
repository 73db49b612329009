// Package testutil holds conformance tests shared by the object-store implementations.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bobg/vcs"
)

// ReadWrite permits testing a Store implementation
// by writing objects of each kind to it,
// then reading them back out to make sure they're the same.
// It also checks that a second write of the same object is a no-op
// and that missing objects are reported with vcs.ErrNotFound.
func ReadWrite(ctx context.Context, t *testing.T, store vcs.Store) {
	objs := []struct {
		kind    vcs.Kind
		payload []byte
	}{
		{kind: vcs.Blob, payload: []byte("x")},
		{kind: vcs.Blob, payload: nil},
		{kind: vcs.Blob, payload: bytes.Repeat([]byte("0123456789abcdef"), 4096)},
		{kind: vcs.Tree, payload: nil},
		{kind: vcs.Commit, payload: []byte("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n\ninit\n")},
	}

	for i, obj := range objs {
		t.Run(fmt.Sprintf("obj_%02d", i+1), func(t *testing.T) {
			addr, added, err := store.Put(ctx, obj.kind, obj.payload)
			if err != nil {
				t.Fatal(err)
			}
			if !added {
				t.Error("first write reported not added")
			}
			if want := vcs.AddrOf(obj.kind, obj.payload); addr != want {
				t.Errorf("got address %s, want %s", addr, want)
			}

			addr2, added, err := store.Put(ctx, obj.kind, obj.payload)
			if err != nil {
				t.Fatal(err)
			}
			if added {
				t.Error("second write reported added")
			}
			if addr2 != addr {
				t.Errorf("second write gave address %s, first gave %s", addr2, addr)
			}

			kind, payload, err := store.Get(ctx, addr)
			if err != nil {
				t.Fatal(err)
			}
			if kind != obj.kind {
				t.Errorf("got kind %s, want %s", kind, obj.kind)
			}
			if !bytes.Equal(payload, obj.payload) {
				t.Errorf("got %d-byte payload, want %d bytes", len(payload), len(obj.payload))
			}
		})
	}

	missing := vcs.AddrOf(vcs.Blob, []byte("never stored"))
	if _, _, err := store.Get(ctx, missing); !errors.Is(err, vcs.ErrNotFound) {
		t.Errorf("getting missing object: got error %v, want ErrNotFound", err)
	}
}
