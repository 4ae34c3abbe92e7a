// Package classify files channels under a "continent - country - genre"
// group using the country and genre tables.
package classify

import (
	"strings"

	"personalm3u/m3u"
)

const (
	countryAttr = "tvg-country"
	groupAttr   = "group-title"
)

// Classifier is read-only after New and safe to share.
type Classifier struct {
	countries map[string]Location
	genres    []GenreRule
}

// Default uses the built-in Countries and Genres tables.
func Default() *Classifier {
	return New(Countries, Genres)
}

// New copies the given tables, normalizing country codes to upper case and
// genre keywords to lower case. Empty keywords are dropped.
func New(countries map[string]Location, genres []GenreRule) *Classifier {
	c := &Classifier{
		countries: make(map[string]Location, len(countries)),
		genres:    make([]GenreRule, 0, len(genres)),
	}
	for code, loc := range countries {
		c.countries[strings.ToUpper(strings.TrimSpace(code))] = loc
	}
	for _, g := range genres {
		kw := strings.ToLower(strings.TrimSpace(g.Keyword))
		if kw == "" {
			continue
		}
		c.genres = append(c.genres, GenreRule{Keyword: kw, Genre: g.Genre})
	}
	return c
}

// Location resolves a tvg-country value. Only the first of several
// ";"-separated codes is used.
func (c *Classifier) Location(code string) Location {
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Location{Other, Other}
	}
	if loc, ok := c.countries[code]; ok {
		return loc
	}
	return Location{Other, Other}
}

func (c *Classifier) Genre(groupTitle string) string {
	title := strings.ToLower(strings.TrimSpace(groupTitle))
	if title == "" {
		return Other
	}
	for _, g := range c.genres {
		if strings.Contains(title, g.Keyword) {
			return g.Genre
		}
	}
	return Other
}

func (c *Classifier) Group(countryCode, groupTitle string) string {
	loc := c.Location(countryCode)
	return loc.Continent + " - " + loc.Country + " - " + c.Genre(groupTitle)
}

// Classify sets t.Group from its tvg-country and group-title attributes.
func (c *Classifier) Classify(t *m3u.Track) {
	t.Group = c.Group(t.Attr(countryAttr), t.Attr(groupAttr))
}
