package testutil

import (
	"context"
	"sort"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/vcs"
)

// AllAddrs writes a random set of random blobs to an empty store
// and makes sure that the right set of addresses comes back in a call to ListAddrs.
func AllAddrs(ctx context.Context, t *testing.T, storeFactory func() vcs.Store) {
	if err := quick.Check(allAddrsHelper(ctx, t, storeFactory), &quick.Config{MaxCount: 20}); err != nil {
		t.Error(err)
	}
}

func allAddrsHelper(ctx context.Context, t *testing.T, storeFactory func() vcs.Store) func([][]byte) bool {
	return func(blobs [][]byte) bool {
		var (
			store = storeFactory()
			want  []vcs.Addr
		)
		for _, blob := range blobs {
			addr, added, err := store.Put(ctx, vcs.Blob, blob)
			if err != nil {
				t.Fatal(err)
			}
			if added {
				want = append(want, addr)
			}
		}
		var got []vcs.Addr
		err := store.ListAddrs(ctx, vcs.Zero, func(a vcs.Addr) error {
			got = append(got, a)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })

		if diff := cmp.Diff(want, got); diff != "" {
			t.Logf("mismatch (-want +got):\n%s", diff)
			return false
		}
		return true
	}
}
