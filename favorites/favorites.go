// Package favorites copies channels matching user patterns into a
// top-level favorites group.
package favorites

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"personalm3u/logger"
	"personalm3u/m3u"
	"personalm3u/resolution"
)

// Group is the label of the favorites group. It is written first.
const Group = "★ Favorites"

const matchTimeout = 100 * time.Millisecond

// List is an ordered set of case-insensitive patterns searched against
// channel display names.
type List struct {
	Group    string
	patterns []*regexp2.Regexp
}

// Parse reads one pattern per line. Blank lines and lines starting with "#"
// are ignored. A pattern that does not compile is logged and skipped.
func Parse(r io.Reader) (*List, error) {
	l := &List{Group: Group}
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := l.Add(line); err != nil {
			logger.Default.Warn().Int("line", lineNum).Err(err).Msg("skipping favorites pattern")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	return l, nil
}

// LoadFile parses the favorites file at path. A missing file gives an empty
// list.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Default.Warn().Str("path", path).Msg("favorites file not found, continuing without favorites")
		return &List{Group: Group}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open favorites: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Add compiles pattern and appends it to the list.
func (l *List) Add(pattern string) error {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = matchTimeout
	l.patterns = append(l.patterns, re)
	return nil
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.patterns)
}

// Match reports whether any pattern is found anywhere in name.
func (l *List) Match(name string) bool {
	if l == nil {
		return false
	}
	for _, re := range l.patterns {
		ok, err := re.MatchString(name)
		if err != nil {
			logger.Default.Warn().Str("pattern", re.String()).Str("name", name).Err(err).Msg("favorites match failed")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Apply returns tracks followed by one favorites copy of every matching
// track. Names are matched without their resolution tag. Copies already
// present in tracks count against the originals they were made from, so
// applying the list again changes nothing while distinct records that share
// a name and URI each get their own copy.
func (l *List) Apply(tracks []*m3u.Track) []*m3u.Track {
	if l.Len() == 0 {
		return tracks
	}
	copies := make(map[string]int)
	for _, t := range tracks {
		if t.Favorite {
			copies[key(t)]++
		}
	}
	out := append(make([]*m3u.Track, 0, len(tracks)), tracks...)
	for _, t := range tracks {
		if t.Favorite || !l.Match(resolution.StripTag(t.Name)) {
			continue
		}
		if k := key(t); copies[k] > 0 {
			copies[k]--
			continue
		}
		c := t.Clone()
		c.Favorite = true
		c.Group = l.label()
		out = append(out, c)
	}
	return out
}

func (l *List) label() string {
	if l.Group == "" {
		return Group
	}
	return l.Group
}

// key identifies a record by everything but its group.
func key(t *m3u.Track) string {
	var b strings.Builder
	b.WriteString(t.URI)
	b.WriteByte(0)
	b.WriteString(t.Name)
	for _, tag := range t.Tags {
		if strings.EqualFold(tag.Name, "group-title") {
			continue
		}
		b.WriteByte(0)
		b.WriteString(tag.Name)
		b.WriteByte('=')
		b.WriteString(tag.Value)
	}
	for _, d := range t.Directives {
		b.WriteByte(0)
		b.WriteString(d)
	}
	return b.String()
}
