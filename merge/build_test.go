package merge

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personalm3u/favorites"
	"personalm3u/m3u"
	"personalm3u/resolution"
)

const source = `#EXTM3U x-tvg-url="https://epg.example/guide.xml"
#EXTINF:-1 tvg-id="ytn.kr" tvg-country="KR" group-title="News",YTN
https://example.com/ytn.m3u8
#EXTINF:-1 tvg-id="talk.zz" tvg-country="ZZ" group-title="Random Talk Show",Talk Talk
https://example.com/talk.m3u8
#EXTINF:-1 tvg-id="morning.us" tvg-country="US" group-title="News",Morning NEWS HD
https://example.com/morning.m3u8
#EXTINF:-1 tvg-id="one.ru" tvg-country="RU" group-title="General",Channel One 1080p
#EXTVLCOPT:http-referrer=https://ref.example/
https://example.com/one.m3u8
https://example.com/orphan.m3u8
#EXTINF:-1 tvg-id="kbs.kr" tvg-country="KR" group-title="News;General",KBS News
https://example.com/kbs.m3u8
`

func build(t *testing.T, src string, opts Options) (string, Stats) {
	t.Helper()
	var out bytes.Buffer
	stats, err := Build(strings.NewReader(src), &out, opts)
	require.NoError(t, err)
	return out.String(), stats
}

func TestBuild_grouping(t *testing.T) {
	out, stats := build(t, source, Options{})

	want := `#EXTM3U x-tvg-url="https://epg.example/guide.xml"
#EXTINF:-1 tvg-id="talk.zz" tvg-country="ZZ" group-title="기타 - 기타 - 기타",Talk Talk
https://example.com/talk.m3u8
#EXTINF:-1 tvg-id="morning.us" tvg-country="US" group-title="북미 - 미국 - 뉴스",Morning NEWS HD
https://example.com/morning.m3u8
#EXTINF:-1 tvg-id="ytn.kr" tvg-country="KR" group-title="아시아 - 대한민국 - 뉴스",YTN
https://example.com/ytn.m3u8
#EXTINF:-1 tvg-id="kbs.kr" tvg-country="KR" group-title="아시아 - 대한민국 - 뉴스",KBS News
https://example.com/kbs.m3u8
#EXTINF:-1 tvg-id="one.ru" tvg-country="RU" group-title="유럽 - 러시아 - 엔터테인먼트",Channel One 1080p
#EXTVLCOPT:http-referrer=https://ref.example/
https://example.com/one.m3u8
`
	assert.Equal(t, want, out)
	assert.Equal(t, Stats{Parsed: 5, Skipped: 1, Favorites: 0, Groups: 4}, stats)
}

func TestBuild_favoritesAndTags(t *testing.T) {
	fav := &favorites.List{Group: favorites.Group}
	require.NoError(t, fav.Add("news"))

	out, stats := build(t, source, Options{
		Tagger:    resolution.New(nil, resolution.SD),
		Favorites: fav,
	})
	assert.Equal(t, 2, stats.Favorites)

	p, err := m3u.ReadAll(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, p.Tracks, 7)

	assert.Equal(t, "Morning NEWS HD [HD]", p.Tracks[0].Name)
	assert.Equal(t, favorites.Group, p.Tracks[0].Attr("group-title"))
	assert.Equal(t, "KBS News [SD]", p.Tracks[1].Name)
	assert.Equal(t, favorites.Group, p.Tracks[1].Attr("group-title"))

	var morning []m3u.Track
	for _, tr := range p.Tracks {
		if tr.URI == "https://example.com/morning.m3u8" {
			morning = append(morning, tr)
		}
	}
	require.Len(t, morning, 2)
	assert.Equal(t, "북미 - 미국 - 뉴스", morning[1].Attr("group-title"))

	assert.Contains(t, out, ",Channel One 1080p [FHD]\n")
	assert.Equal(t, 1, strings.Count(out, "[FHD]"))
}

func TestBuild_tagsAreNotDoubled(t *testing.T) {
	opts := Options{Tagger: resolution.New(nil, resolution.SD)}
	first, _ := build(t, source, opts)
	second, _ := build(t, first, opts)

	p, err := m3u.ReadAll(strings.NewReader(second))
	require.NoError(t, err)
	require.Len(t, p.Tracks, 5)
	for _, tr := range p.Tracks {
		assert.Equal(t, 1, strings.Count(tr.Name, " ["), tr.Name)
		assert.True(t, resolution.HasTag(tr.Name), tr.Name)
	}
}

func TestBuild_hints(t *testing.T) {
	out, _ := build(t, source, Options{
		Tagger: resolution.New(nil, ""),
		Hints:  map[string]resolution.Tag{"https://example.com/ytn.m3u8": resolution.UHD},
	})
	assert.Contains(t, out, ",YTN [UHD]\n")
	assert.Contains(t, out, ",KBS News\n")
}

func TestBuild_headerOnly(t *testing.T) {
	out, stats := build(t, "#EXTM3U\n", Options{})
	assert.Equal(t, "#EXTM3U\n", out)
	assert.Equal(t, 0, stats.Groups)

	out, _ = build(t, "", Options{})
	assert.Equal(t, "#EXTM3U\n", out)
}

func TestBuild_deterministic(t *testing.T) {
	fav := &favorites.List{}
	require.NoError(t, fav.Add("kbs|ytn"))
	opts := Options{Tagger: resolution.New(nil, resolution.SD), Favorites: fav}
	a, _ := build(t, source, opts)
	b, _ := build(t, source, opts)
	assert.Equal(t, a, b)
}

type triple struct {
	name string
	uri  string
	tags []m3u.Tag
}

func TestBuild_roundTrip(t *testing.T) {
	in, err := m3u.ReadAll(strings.NewReader(source))
	require.NoError(t, err)

	out, _ := build(t, source, Options{Tagger: resolution.New(nil, resolution.SD)})
	back, err := m3u.ReadAll(strings.NewReader(out))
	require.NoError(t, err)

	assert.ElementsMatch(t, triples(in.Tracks), triples(back.Tracks))
}

func triples(tracks []m3u.Track) []triple {
	var out []triple
	for _, tr := range tracks {
		var tags []m3u.Tag
		for _, tag := range tr.Tags {
			if tag.Name != "group-title" {
				tags = append(tags, tag)
			}
		}
		out = append(out, triple{name: resolution.StripTag(tr.Name), uri: tr.URI, tags: tags})
	}
	return out
}

func TestGroups_order(t *testing.T) {
	tracks := []*m3u.Track{
		{Name: "a", Group: "b"},
		{Name: "b", Group: favorites.Group},
		{Name: "c", Group: "a"},
		{Name: "d", Group: "b"},
	}
	groups := Groups(tracks, favorites.Group)
	require.Len(t, groups, 3)
	assert.Equal(t, favorites.Group, groups[0].Name)
	assert.Equal(t, "a", groups[1].Name)
	assert.Equal(t, "b", groups[2].Name)
	assert.Equal(t, "a", groups[2].Tracks[0].Name)
	assert.Equal(t, "d", groups[2].Tracks[1].Name)
}
