package index

import "fmt"

// Merge combines the entries already in the index with newly staged ones.
//
// For a path in both, the incoming entry replaces the existing one at the existing one's position.
// Paths only in existing keep their positions.
// Paths only in incoming are appended, in their given order.
// The relative order of paths already known to the index never changes.
//
// If incoming lists a path more than once, its first occurrence is used.
func Merge(existing, incoming []Entry) []Entry {
	byPath := make(map[string]int, len(incoming))
	for i, e := range incoming {
		if _, ok := byPath[e.Path]; !ok {
			byPath[e.Path] = i
		}
	}

	common := make(map[string]bool)
	for _, e := range existing {
		if _, ok := byPath[e.Path]; ok {
			common[e.Path] = true
		}
	}

	result := make([]Entry, 0, len(existing)+len(incoming)-len(common))
	for _, e := range existing {
		if !common[e.Path] {
			result = append(result, e)
			continue
		}
		i, ok := byPath[e.Path]
		if !ok {
			panic(fmt.Sprintf("index merge: common path %q not among incoming entries", e.Path))
		}
		result = append(result, incoming[i])
	}

	appended := make(map[string]bool)
	for _, e := range incoming {
		if common[e.Path] || appended[e.Path] {
			continue
		}
		appended[e.Path] = true
		result = append(result, e)
	}

	return result
}
