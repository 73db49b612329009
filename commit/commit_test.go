package commit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store/mem"
)

func TestSignature(t *testing.T) {
	cases := []struct {
		sig  Signature
		want string
	}{{
		sig:  Signature{Name: "A U Thor", Email: "author@example.com", When: time.Unix(1700000000, 0).In(time.FixedZone("", 9*3600))},
		want: "A U Thor <author@example.com> 1700000000 +0900",
	}, {
		sig:  Signature{Name: "West", Email: "w@example.com", When: time.Unix(0, 0).In(time.FixedZone("", -(5*3600 + 30*60)))},
		want: "West <w@example.com> 0 -0530",
	}, {
		sig:  Signature{Name: "Z", Email: "z@example.com", When: time.Unix(86400, 0).UTC()},
		want: "Z <z@example.com> 86400 +0000",
	}}

	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			if got := c.sig.String(); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
			parsed, err := ParseSignature(c.want)
			if err != nil {
				t.Fatal(err)
			}
			if parsed.Name != c.sig.Name || parsed.Email != c.sig.Email || !parsed.When.Equal(c.sig.When) {
				t.Errorf("parsed %+v, want %+v", parsed, c.sig)
			}
			if got := parsed.String(); got != c.want {
				t.Errorf("reformatted as %q", got)
			}
		})
	}

	for _, bad := range []string{"", "no email 1 +0000", "x <y> 1", "x <y> abc +0000", "x <y> 1 0900", "x <y> 1 +09x0"} {
		if _, err := ParseSignature(bad); err == nil {
			t.Errorf("ParseSignature(%q) succeeded", bad)
		}
	}
}

func sig(name string, secs int64) Signature {
	return Signature{Name: name, Email: name + "@example.com", When: time.Unix(secs, 0).In(time.FixedZone("", 3600))}
}

func TestEncode(t *testing.T) {
	tree, _ := vcs.AddrFromHex("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
	parent := vcs.AddrOf(vcs.Commit, []byte("p"))

	c := &Commit{
		Tree:      tree,
		Author:    sig("alice", 100),
		Committer: sig("bob", 200),
		Message:   "init",
	}
	want := "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"author alice <alice@example.com> 100 +0100\n" +
		"committer bob <bob@example.com> 200 +0100\n" +
		"\n" +
		"init\n"
	if diff := cmp.Diff(want, string(c.Encode())); diff != "" {
		t.Errorf("root commit mismatch (-want +got):\n%s", diff)
	}

	c.Parent = parent
	want = "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"parent " + parent.String() + "\n" +
		"author alice <alice@example.com> 100 +0100\n" +
		"committer bob <bob@example.com> 200 +0100\n" +
		"\n" +
		"init\n"
	if diff := cmp.Diff(want, string(c.Encode())); diff != "" {
		t.Errorf("child commit mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tree := vcs.AddrOf(vcs.Tree, nil)
	for _, msg := range []string{"init", "", "multi\nline\n\nmessage", "trailing newline\n"} {
		for _, parent := range []vcs.Addr{vcs.Zero, vcs.AddrOf(vcs.Commit, []byte(msg))} {
			c := &Commit{
				Tree:      tree,
				Parent:    parent,
				Author:    sig("a", 1),
				Committer: sig("c", 2),
				Message:   msg,
			}
			got, err := Parse(c.Encode())
			if err != nil {
				t.Fatal(err)
			}
			if got.Tree != c.Tree || got.Parent != c.Parent || got.Message != c.Message {
				t.Errorf("got %+v, want %+v", got, c)
			}
			if got.Author.String() != c.Author.String() || got.Committer.String() != c.Committer.String() {
				t.Errorf("signatures: got %s / %s", got.Author, got.Committer)
			}
		}
	}

	bad := map[string]string{
		"no separator": "tree " + tree.String() + "\n",
		"no tree":      "author a <a> 1 +0000\ncommitter a <a> 1 +0000\n\nm\n",
		"bad tree":     "tree xyz\nauthor a <a> 1 +0000\ncommitter a <a> 1 +0000\n\nm\n",
		"two parents": "tree " + tree.String() + "\nparent " + tree.String() + "\nparent " + tree.String() +
			"\nauthor a <a> 1 +0000\ncommitter a <a> 1 +0000\n\nm\n",
		"unknown header": "tree " + tree.String() + "\nauthor a <a> 1 +0000\ncommitter a <a> 1 +0000\nfoo bar\n\nm\n",
	}
	for name, payload := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(payload)); !errors.Is(err, vcs.ErrCorruptObject) {
				t.Errorf("got %v, want ErrCorruptObject", err)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	store := mem.New()

	c := &Commit{
		Tree:      vcs.AddrOf(vcs.Tree, nil),
		Author:    sig("a", 1),
		Committer: sig("a", 1),
		Message:   "hello",
	}
	addr, err := Write(ctx, store, c)
	if err != nil {
		t.Fatal(err)
	}
	if want := vcs.AddrOf(vcs.Commit, c.Encode()); addr != want {
		t.Errorf("got address %s, want %s", addr, want)
	}

	got, err := Read(ctx, store, addr)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(c.Encode()), string(got.Encode())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err = Read(ctx, store, c.Tree); !errors.Is(err, vcs.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
