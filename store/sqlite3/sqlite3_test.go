package sqlite3

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	testutil.ReadWrite(ctx, t, newTestStore(ctx, t))
}

func TestAllAddrs(t *testing.T) {
	ctx := context.Background()
	testutil.AllAddrs(ctx, t, func() vcs.Store { return newTestStore(ctx, t) })
}

func newTestStore(ctx context.Context, t *testing.T) *Store {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "objects.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
