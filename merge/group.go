package merge

import (
	"sort"

	"personalm3u/m3u"
)

type Group struct {
	Name   string
	Tracks []*m3u.Track
}

// Groups buckets tracks by their Group label. The group named first comes
// first; the rest are sorted by label. Tracks keep their relative order.
func Groups(tracks []*m3u.Track, first string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, t := range tracks {
		i, ok := index[t.Group]
		if !ok {
			i = len(groups)
			index[t.Group] = i
			groups = append(groups, Group{Name: t.Group})
		}
		groups[i].Tracks = append(groups[i].Tracks, t)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Name, groups[j].Name
		if a == first || b == first {
			return a == first && b != first
		}
		return a < b
	})
	return groups
}
