package m3u

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	groupTitle = "group-title"
	extgrp     = "#EXTGRP:"
)

// Encoder writes tracks in extended M3U syntax. Call Flush when done.
type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes the #EXTM3U line with the given header attributes.
func (e *Encoder) WriteHeader(header []Tag) error {
	var b strings.Builder
	b.WriteString("#EXTM3U")
	writeTags(&b, header)
	b.WriteByte('\n')
	_, err := e.w.WriteString(b.String())
	return err
}

// Encode writes the EXTINF line, the directives and the URI of t. When
// t.Group is set it is written as the group-title attribute, in place of the
// original one, and any #EXTGRP directive is rewritten to match.
func (e *Encoder) Encode(t *Track) error {
	tags := t.Tags
	if t.Group != "" {
		tags = withGroup(tags, t.Group)
	}

	var b strings.Builder
	b.WriteString("#EXTINF:")
	if t.Duration != "" {
		b.WriteString(t.Duration)
	} else {
		b.WriteString(strconv.Itoa(t.Length))
	}
	writeTags(&b, tags)
	b.WriteByte(',')
	b.WriteString(t.Name)
	b.WriteByte('\n')
	for _, d := range t.Directives {
		if t.Group != "" && strings.HasPrefix(d, extgrp) {
			d = extgrp + t.Group
		}
		b.WriteString(d)
		b.WriteByte('\n')
	}
	b.WriteString(t.URI)
	b.WriteByte('\n')

	_, err := e.w.WriteString(b.String())
	return err
}

func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func writeTags(b *strings.Builder, tags []Tag) {
	for _, tag := range tags {
		b.WriteByte(' ')
		b.WriteString(tag.Name)
		b.WriteString(`="`)
		b.WriteString(tag.Value)
		b.WriteByte('"')
	}
}

func withGroup(tags []Tag, group string) []Tag {
	out := make([]Tag, 0, len(tags)+1)
	replaced := false
	for _, tag := range tags {
		if !replaced && strings.EqualFold(tag.Name, groupTitle) {
			tag.Value = group
			replaced = true
		}
		out = append(out, tag)
	}
	if !replaced {
		out = append(out, Tag{Name: groupTitle, Value: group})
	}
	return out
}
