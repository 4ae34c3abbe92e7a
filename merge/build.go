// Package merge regroups a playlist: it classifies every channel, optionally
// tags and favorites it, and writes the groups back in a stable order.
package merge

import (
	"fmt"
	"io"

	"personalm3u/classify"
	"personalm3u/favorites"
	"personalm3u/logger"
	"personalm3u/m3u"
	"personalm3u/resolution"
)

type Options struct {
	// Classifier defaults to classify.Default().
	Classifier *classify.Classifier
	// Tagger is nil when resolution tags are off.
	Tagger *resolution.Tagger
	// Favorites may be nil or empty.
	Favorites *favorites.List
	// Hints are probed resolution tags keyed by stream URI.
	Hints map[string]resolution.Tag
}

type Stats struct {
	Parsed    int
	Skipped   int
	Favorites int
	Groups    int
}

// Build reads a playlist from r and writes the regrouped playlist to w.
// Malformed entries are skipped; only read and write errors are returned.
func Build(r io.Reader, w io.Writer, opts Options) (Stats, error) {
	var stats Stats
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.Default()
	}

	dec := m3u.NewDecoder(r)
	var tracks []*m3u.Track
	for dec.Next() {
		t := dec.Track()
		classifier.Classify(t)
		if opts.Tagger != nil {
			opts.Tagger.Apply(t, opts.Hints[t.URI])
		}
		tracks = append(tracks, t)
	}
	if err := dec.Err(); err != nil {
		return stats, fmt.Errorf("parse playlist: %w", err)
	}
	stats.Parsed = len(tracks)
	stats.Skipped = dec.Skipped()
	if stats.Skipped > 0 {
		logger.Default.Debug().Int("skipped", stats.Skipped).Msg("dropped incomplete playlist entries")
	}

	all := opts.Favorites.Apply(tracks)
	stats.Favorites = len(all) - len(tracks)

	first := favorites.Group
	if opts.Favorites != nil && opts.Favorites.Group != "" {
		first = opts.Favorites.Group
	}
	groups := Groups(all, first)
	stats.Groups = len(groups)

	enc := m3u.NewEncoder(w)
	if err := enc.WriteHeader(dec.Header()); err != nil {
		return stats, fmt.Errorf("write playlist: %w", err)
	}
	for _, g := range groups {
		for _, t := range g.Tracks {
			if err := enc.Encode(t); err != nil {
				return stats, fmt.Errorf("write playlist: %w", err)
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return stats, fmt.Errorf("write playlist: %w", err)
	}
	return stats, nil
}
