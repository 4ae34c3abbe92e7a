// Package m3u reads and writes extended M3U channel lists.
package m3u

import (
	"bytes"
	"strings"
)

// Placeholder is used as the display name of an entry whose EXTINF line
// carries neither a title nor a tvg-name attribute.
const Placeholder = "Unknown"

type Tag struct {
	Name  string
	Value string
}

// Track is one playlist entry: an EXTINF metadata line and its stream URI.
type Track struct {
	Name   string
	Length int
	// Duration is the EXTINF duration exactly as read, e.g. "10.5". When set
	// it is written instead of Length.
	Duration string
	URI      string
	Tags     []Tag
	// Directives holds the #-lines found between the EXTINF line and the URI,
	// e.g. #EXTVLCOPT options. They are written back verbatim.
	Directives []string

	Group    string
	Favorite bool
}

type Playlist struct {
	Header []Tag
	Tracks []Track
}

// Attr returns the value of the first attribute named key, compared
// case-insensitively.
func (t *Track) Attr(key string) string {
	for _, tag := range t.Tags {
		if strings.EqualFold(tag.Name, key) {
			return tag.Value
		}
	}
	return ""
}

// SetAttr replaces the first attribute named key or appends a new one.
func (t *Track) SetAttr(key, value string) {
	for i := range t.Tags {
		if strings.EqualFold(t.Tags[i].Name, key) {
			t.Tags[i].Value = value
			return
		}
	}
	t.Tags = append(t.Tags, Tag{Name: key, Value: value})
}

// Clone returns a shallow copy whose attribute and directive slices can be
// modified without touching t.
func (t *Track) Clone() *Track {
	c := *t
	c.Tags = append([]Tag(nil), t.Tags...)
	c.Directives = append([]string(nil), t.Directives...)
	return &c
}

// Marshall encodes p into an in-memory buffer.
func Marshall(p Playlist) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	if err := enc.WriteHeader(p.Header); err != nil {
		return nil, err
	}
	for i := range p.Tracks {
		if err := enc.Encode(&p.Tracks[i]); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf, nil
}
