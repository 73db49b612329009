package tree

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/index"
	"github.com/bobg/vcs/store/mem"
)

func entry(path string, content string) index.Entry {
	return index.Entry{
		Mode:  0100644,
		Addr:  vcs.AddrOf(vcs.Blob, []byte(content)),
		Flags: index.Flags(path),
		Path:  path,
	}
}

func TestEmpty(t *testing.T) {
	store := mem.New()
	addr, err := Build(context.Background(), store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := addr.String(); got != "4b825dc642cb6eb9a060e54bf8d69288fbee4904" {
		t.Errorf("got %s, want the empty tree", got)
	}
	if store.Len() != 1 {
		t.Errorf("got %d objects, want 1", store.Len())
	}
}

func TestNested(t *testing.T) {
	ctx := context.Background()
	store := mem.New()

	blob, _, err := store.Put(ctx, vcs.Blob, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	root, err := Build(ctx, store, []index.Entry{entry("a/b/c.txt", "x")})
	if err != nil {
		t.Fatal(err)
	}

	// One blob and three trees.
	if store.Len() != 4 {
		t.Errorf("got %d objects, want 4", store.Len())
	}

	rootRecs, err := Read(ctx, store, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(rootRecs) != 1 || rootRecs[0].Name != "a" || !rootRecs[0].IsDir() {
		t.Fatalf("root: got %+v", rootRecs)
	}
	aRecs, err := Read(ctx, store, rootRecs[0].Addr)
	if err != nil {
		t.Fatal(err)
	}
	if len(aRecs) != 1 || aRecs[0].Name != "b" || !aRecs[0].IsDir() {
		t.Fatalf("a: got %+v", aRecs)
	}
	bRecs, err := Read(ctx, store, aRecs[0].Addr)
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{{Mode: 0100644, Name: "c.txt", Addr: blob}}
	if diff := cmp.Diff(want, bRecs); diff != "" {
		t.Errorf("a/b mismatch (-want +got):\n%s", diff)
	}

	_, payload, err := store.Get(ctx, aRecs[0].Addr)
	if err != nil {
		t.Fatal(err)
	}
	wantPayload := append([]byte("100644 c.txt\x00"), blob[:]...)
	if diff := cmp.Diff(wantPayload, payload); diff != "" {
		t.Errorf("a/b payload mismatch (-want +got):\n%s", diff)
	}

	_, payload, err = store.Get(ctx, rootRecs[0].Addr)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(payload[:9]); got != "040000 b\x00" {
		t.Errorf("got directory record prefix %q", got)
	}
}

func TestOrder(t *testing.T) {
	ctx := context.Background()

	build := func(entries ...index.Entry) vcs.Addr {
		addr, err := Build(ctx, mem.New(), entries)
		if err != nil {
			t.Fatal(err)
		}
		return addr
	}

	// The same index contents always give the same tree.
	a1 := build(entry("z", "1"), entry("d/x", "2"), entry("d/y", "3"))
	a2 := build(entry("z", "1"), entry("d/x", "2"), entry("d/y", "3"))
	if a1 != a2 {
		t.Errorf("same entries gave %s and %s", a1, a2)
	}

	// Insertion order is preserved, not sorted.
	a3 := build(entry("d/x", "2"), entry("d/y", "3"), entry("z", "1"))
	if a1 == a3 {
		t.Error("reordered entries gave the same tree")
	}

	// Interleaving at the top level does not matter within a directory.
	store := mem.New()
	a4, err := Build(ctx, store, []index.Entry{entry("z", "1"), entry("d/x", "2"), entry("e", "4"), entry("d/y", "3")})
	if err != nil {
		t.Fatal(err)
	}
	recs, err := Read(ctx, store, a4)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range recs {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"z", "d", "e"}, names); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if recs[1].Addr != dirAddr(t, entry("x", "2"), entry("y", "3")) {
		t.Error("d does not match a tree built from its own entries")
	}
}

func dirAddr(t *testing.T, entries ...index.Entry) vcs.Addr {
	t.Helper()
	addr, err := Build(context.Background(), mem.New(), entries)
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

func TestConflict(t *testing.T) {
	cases := map[string][]index.Entry{
		"file then dir": {entry("a", "1"), entry("a/b", "2")},
		"dir then file": {entry("a/b", "1"), entry("a", "2")},
		"deep":          {entry("a/b/c", "1"), entry("a/b/c/d", "2")},
		"duplicate":     {entry("a/b", "1"), entry("a/b", "2")},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			store := mem.New()
			_, err := Build(context.Background(), store, entries)
			if !errors.Is(err, ErrConflict) {
				t.Errorf("got %v, want ErrConflict", err)
			}
			if store.Len() != 0 {
				t.Errorf("%d objects written despite the conflict", store.Len())
			}
		})
	}
}

func TestInvalidPath(t *testing.T) {
	for _, path := range []string{"a//b", "/a", "a/", "./a", "a/../b"} {
		t.Run(path, func(t *testing.T) {
			_, err := Build(context.Background(), mem.New(), []index.Entry{entry(path, "1")})
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("got %v, want ErrInvalidPath", err)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	entries := []index.Entry{
		entry("README", "r"),
		entry("src/main.go", "m"),
		entry("src/lib/util.go", "u"),
		entry("doc/index.md", "i"),
		entry("src/z.go", "z"),
	}
	root, err := Build(ctx, store, entries)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	err = Walk(ctx, store, root, func(path string, r Record) error {
		got = append(got, path)
		if r.Addr != vcs.AddrOf(vcs.Blob, []byte(wantContent[path])) {
			t.Errorf("%s: wrong blob", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"README", "src/main.go", "src/lib/util.go", "src/z.go", "doc/index.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

var wantContent = map[string]string{
	"README":          "r",
	"src/main.go":     "m",
	"src/lib/util.go": "u",
	"doc/index.md":    "i",
	"src/z.go":        "z",
}

func TestParse(t *testing.T) {
	addr := vcs.AddrOf(vcs.Blob, []byte("x"))
	recs := []Record{
		{Mode: 0100755, Name: "run", Addr: addr},
		{Mode: ModeDir, Name: "sub dir", Addr: vcs.Zero},
	}
	got, err := Parse(Encode(recs))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	good := Encode(recs[:1])
	corrupt := map[string][]byte{
		"truncated hash": good[:len(good)-1],
		"no mode":        []byte("100644"),
		"empty mode":     append([]byte(" a\x00"), addr[:]...),
		"bad mode":       append([]byte("10x644 a\x00"), addr[:]...),
		"huge mode":      append([]byte("7777777777777 a\x00"), addr[:]...),
		"no name":        append([]byte("100644 \x00"), addr[:]...),
		"no NUL":         []byte("100644 abc"),
	}
	for name, payload := range corrupt {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(payload); !errors.Is(err, vcs.ErrCorruptObject) {
				t.Errorf("got %v, want ErrCorruptObject", err)
			}
		})
	}
}

func TestReadNotTree(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	addr, _, err := store.Put(ctx, vcs.Blob, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Read(ctx, store, addr); err == nil {
		t.Error("reading a blob as a tree succeeded")
	}
}
