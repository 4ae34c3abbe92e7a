// Package resolution guesses a stream's quality tier from channel metadata
// and appends it to the display name as "[UHD]", "[FHD]", "[HD]" or "[SD]".
package resolution

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"personalm3u/m3u"
)

type Tag string

const (
	UHD Tag = "UHD"
	FHD Tag = "FHD"
	HD  Tag = "HD"
	SD  Tag = "SD"
)

const matchTimeout = 100 * time.Millisecond

// ParseTag accepts the four tags in any case. The empty string is valid and
// means "no tag".
func ParseTag(s string) (Tag, error) {
	switch tag := Tag(strings.ToUpper(strings.TrimSpace(s))); tag {
	case "", UHD, FHD, HD, SD:
		return tag, nil
	default:
		return "", fmt.Errorf("unknown resolution tag %q", s)
	}
}

// FromHeight maps a vertical resolution to a tier.
func FromHeight(h int) Tag {
	switch {
	case h >= 2160:
		return UHD
	case h >= 1080:
		return FHD
	case h >= 720:
		return HD
	default:
		return SD
	}
}

type Rule struct {
	Tag     Tag
	Pattern string
	re      *regexp2.Regexp
}

// NewRule compiles pattern case-insensitively.
func NewRule(tag Tag, pattern string) (Rule, error) {
	parsed, err := ParseTag(string(tag))
	if err != nil || parsed == "" {
		return Rule{}, fmt.Errorf("rule %q: invalid tag %q", pattern, tag)
	}
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", pattern, err)
	}
	re.MatchTimeout = matchTimeout
	return Rule{Tag: parsed, Pattern: pattern, re: re}, nil
}

func (r Rule) match(s string) bool {
	ok, err := r.re.MatchString(s)
	return err == nil && ok
}

// DefaultRules are checked highest tier first. Numbers may carry suffixes
// such as "1080p50" but must not sit inside a longer number. A bare "hd"
// must be a whole word so "HDTV" does not count.
func DefaultRules() []Rule {
	patterns := []struct {
		tag     Tag
		pattern string
	}{
		{UHD, `(?<!\d)(2160(?!\d)|4k)|uhd`},
		{FHD, `(?<!\d)1080(?!\d)|fhd|full[\s_-]?hd`},
		{HD, `(?<!\d)720(?!\d)|\bhd\b`},
	}
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		r, err := NewRule(p.tag, p.pattern)
		if err != nil {
			panic(err)
		}
		rules = append(rules, r)
	}
	return rules
}

var (
	dimensionsRegex = regexp2.MustCompile(`\b\d{3,4}\s*[x×]\s*(\d{3,4})\b`, regexp2.IgnoreCase)
	taggedRegex     = regexp2.MustCompile(`\s*\[(UHD|FHD|HD|SD)\]\s*$`, regexp2.None)
	anyTagRegex     = regexp2.MustCompile(`\[(UHD|FHD|HD|SD)\]`, regexp2.None)
)

// HasTag reports whether name contains a bracketed resolution tag anywhere.
func HasTag(name string) bool {
	ok, err := anyTagRegex.MatchString(name)
	return err == nil && ok
}

// StripTag removes one trailing resolution tag from name.
func StripTag(name string) string {
	out, err := taggedRegex.Replace(name, "", -1, 1)
	if err != nil {
		return name
	}
	return out
}

type Tagger struct {
	rules    []Rule
	fallback Tag
}

// New returns a Tagger using rules, or DefaultRules when rules is empty.
// Records that match nothing get fallback; an empty fallback leaves them
// untagged.
func New(rules []Rule, fallback Tag) *Tagger {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Tagger{rules: rules, fallback: fallback}
}

// Detect looks for a WIDTHxHEIGHT token first, then walks the rules in order.
func (t *Tagger) Detect(texts ...string) (Tag, bool) {
	text := strings.Join(texts, " ")
	if m, err := dimensionsRegex.FindStringMatch(text); err == nil && m != nil {
		if h, err := strconv.Atoi(m.GroupByNumber(1).String()); err == nil {
			return FromHeight(h), true
		}
	}
	for _, r := range t.rules {
		if r.match(text) {
			return r.Tag, true
		}
	}
	return "", false
}

// Apply appends the tag to tr.Name. A non-empty hint wins over the
// heuristics, which read the name, tvg-name, tvg-id and group-title. Names
// that already contain a tag are left alone.
func (t *Tagger) Apply(tr *m3u.Track, hint Tag) {
	if HasTag(tr.Name) {
		return
	}
	tag := hint
	if tag == "" {
		var ok bool
		if tag, ok = t.Detect(tr.Name, tr.Attr("tvg-name"), tr.Attr("tvg-id"), tr.Attr("group-title")); !ok {
			tag = t.fallback
		}
	}
	if tag == "" {
		return
	}
	tr.Name = tr.Name + " [" + string(tag) + "]"
}
