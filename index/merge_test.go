package index

import (
	"fmt"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func mkEntries(specs ...string) []Entry {
	var result []Entry
	for _, s := range specs {
		var path string
		var size uint32
		fmt.Sscanf(s, "%s %d", &path, &size)
		result = append(result, Entry{Path: path, Size: size, Flags: Flags(path)})
	}
	return result
}

func TestMerge(t *testing.T) {
	cases := []struct {
		name               string
		existing, incoming []Entry
		want               []Entry
	}{{
		name:     "replace and append",
		existing: mkEntries("a 1", "b 1", "c 1"),
		incoming: mkEntries("b 2", "d 2"),
		want:     mkEntries("a 1", "b 2", "c 1", "d 2"),
	}, {
		name:     "empty existing",
		incoming: mkEntries("z 1", "y 1"),
		want:     mkEntries("z 1", "y 1"),
	}, {
		name:     "empty incoming",
		existing: mkEntries("z 1", "y 1"),
		want:     mkEntries("z 1", "y 1"),
	}, {
		name:     "all replaced, incoming order ignored",
		existing: mkEntries("a 1", "b 1"),
		incoming: mkEntries("b 2", "a 2"),
		want:     mkEntries("a 2", "b 2"),
	}, {
		name:     "duplicate incoming",
		existing: mkEntries("a 1"),
		incoming: mkEntries("b 2", "b 3", "a 2", "a 3"),
		want:     mkEntries("a 2", "b 2"),
	}}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Merge(c.existing, c.incoming)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeOrder(t *testing.T) {
	f := func(existingIDs, incomingIDs []uint8) bool {
		var existing, incoming []Entry
		seen := make(map[string]bool)
		for _, id := range existingIDs {
			path := fmt.Sprintf("p%d", id%32)
			if seen[path] {
				continue
			}
			seen[path] = true
			existing = append(existing, Entry{Path: path, Size: 1})
		}
		for _, id := range incomingIDs {
			incoming = append(incoming, Entry{Path: fmt.Sprintf("p%d", id%32), Size: 2})
		}

		got := Merge(existing, incoming)

		// Existing paths keep their positions.
		if len(got) < len(existing) {
			t.Logf("merge dropped entries: %d < %d", len(got), len(existing))
			return false
		}
		for i, e := range existing {
			if got[i].Path != e.Path {
				t.Logf("position %d: got %s, want %s", i, got[i].Path, e.Path)
				return false
			}
		}

		// Every incoming path wins, and each path appears once.
		inIncoming := make(map[string]bool)
		for _, e := range incoming {
			inIncoming[e.Path] = true
		}
		counts := make(map[string]int)
		for _, e := range got {
			counts[e.Path]++
			if counts[e.Path] > 1 {
				t.Logf("%s appears more than once", e.Path)
				return false
			}
			if inIncoming[e.Path] != (e.Size == 2) {
				t.Logf("%s has the wrong entry", e.Path)
				return false
			}
		}
		return len(counts) == len(seen)+countNew(seen, incoming)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func countNew(existing map[string]bool, incoming []Entry) int {
	fresh := make(map[string]bool)
	for _, e := range incoming {
		if !existing[e.Path] {
			fresh[e.Path] = true
		}
	}
	return len(fresh)
}
