package m3u

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// key="value" or key=value
var attrRegex = regexp.MustCompile(`([A-Za-z0-9_-]+)=(?:"([^"]*)"|([^\s,"]+))`)

// Decoder reads tracks one at a time from an M3U stream. An EXTINF line
// without a URI and a URI without an EXTINF line are dropped and counted in
// Skipped; they never stop the decoder.
type Decoder struct {
	sc      *bufio.Scanner
	header  []Tag
	pending *Track
	track   *Track
	skipped int
	done    bool
	err     error
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc}
}

// Next advances to the next complete track. It returns false at the end of
// input or on a read error, which Err reports.
func (d *Decoder) Next() bool {
	if d.done {
		return false
	}
	d.track = nil
	for d.sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(d.sc.Text(), "\ufeff"))
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTM3U"):
			d.mergeHeader(parseTags(line[len("#EXTM3U"):]))
		case strings.HasPrefix(line, "#EXTINF:"):
			if d.pending != nil {
				d.skipped++
			}
			d.pending = parseExtinf(line)
		case strings.HasPrefix(line, "#"):
			if d.pending != nil {
				d.pending.Directives = append(d.pending.Directives, line)
			}
		default:
			if d.pending == nil {
				d.skipped++
				continue
			}
			d.track, d.pending = d.pending, nil
			d.track.URI = line
			return true
		}
	}
	d.done = true
	if d.pending != nil {
		d.skipped++
		d.pending = nil
	}
	d.err = d.sc.Err()
	return false
}

// Track returns the track read by the last successful call to Next.
func (d *Decoder) Track() *Track {
	return d.track
}

// Header returns the #EXTM3U attributes seen so far.
func (d *Decoder) Header() []Tag {
	return d.header
}

// Skipped is the number of incomplete entries dropped so far.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) mergeHeader(tags []Tag) {
next:
	for _, tag := range tags {
		for _, have := range d.header {
			if strings.EqualFold(have.Name, tag.Name) {
				continue next
			}
		}
		d.header = append(d.header, tag)
	}
}

// ReadAll decodes every track of r.
func ReadAll(r io.Reader) (*Playlist, error) {
	dec := NewDecoder(r)
	p := &Playlist{}
	for dec.Next() {
		p.Tracks = append(p.Tracks, *dec.Track())
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	p.Header = dec.Header()
	return p, nil
}

// #EXTINF:-1 tvg-id="..." tvg-country="KR" group-title="News",Title
func parseExtinf(line string) *Track {
	meta, title := splitTitle(line[len("#EXTINF:"):])
	t := &Track{Length: -1, Tags: parseTags(meta)}
	if fields := strings.Fields(meta); len(fields) > 0 && !strings.Contains(fields[0], "=") {
		t.Duration = fields[0]
		if n, err := strconv.Atoi(fields[0]); err == nil {
			t.Length = n
		} else if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			t.Length = int(f)
		}
	}
	t.Name = strings.TrimSpace(title)
	if t.Name == "" {
		t.Name = strings.TrimSpace(t.Attr("tvg-name"))
	}
	if t.Name == "" {
		t.Name = Placeholder
	}
	return t
}

// splitTitle splits on the first comma that is not inside a quoted value.
func splitTitle(s string) (meta, title string) {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

func parseTags(s string) []Tag {
	var tags []Tag
	for _, m := range attrRegex.FindAllStringSubmatch(s, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		tags = append(tags, Tag{Name: m[1], Value: value})
	}
	return tags
}
