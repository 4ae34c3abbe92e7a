// Package config loads run settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"personalm3u/classify"
	"personalm3u/favorites"
	"personalm3u/resolution"
)

type Country struct {
	Continent string `yaml:"continent"`
	Country   string `yaml:"country"`
}

type Genre struct {
	Keyword string `yaml:"keyword"`
	Genre   string `yaml:"genre"`
}

type ResolutionRule struct {
	Tag     string `yaml:"tag"`
	Pattern string `yaml:"pattern"`
}

type Probe struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	Workers   int           `yaml:"workers"`
	UserAgent string        `yaml:"user_agent"`
	// Rate is the request cap per second; 0 means unlimited.
	Rate float64 `yaml:"rate"`
}

type Config struct {
	Input               string `yaml:"input"`
	Output              string `yaml:"output"`
	Favorites           string `yaml:"favorites"`
	FavoritesGroup      string `yaml:"favorites_group"`
	AppendResolutionTag bool   `yaml:"append_resolution_tag"`
	// ResolutionFallback is used when no rule matches; "" means no tag.
	ResolutionFallback string `yaml:"resolution_fallback"`

	// Countries are merged over the built-in table. Genres and
	// ResolutionRules replace the built-in lists when set.
	Countries       map[string]Country `yaml:"countries"`
	Genres          []Genre            `yaml:"genres"`
	ResolutionRules []ResolutionRule   `yaml:"resolution_rules"`

	Probe    Probe  `yaml:"probe"`
	Schedule string `yaml:"schedule"`
	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		FavoritesGroup:     favorites.Group,
		ResolutionFallback: string(resolution.SD),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if _, err := resolution.ParseTag(c.ResolutionFallback); err != nil {
		errs = append(errs, fmt.Errorf("resolution_fallback: %w", err))
	}
	if _, err := c.Rules(); err != nil {
		errs = append(errs, err)
	}
	if c.Probe.Workers < 0 {
		errs = append(errs, errors.New("probe.workers must not be negative"))
	}
	if c.Probe.Rate < 0 {
		errs = append(errs, errors.New("probe.rate must not be negative"))
	}
	return errors.Join(errs...)
}

// Classifier builds a classifier from the built-in tables and the overrides.
func (c *Config) Classifier() *classify.Classifier {
	countries := make(map[string]classify.Location, len(classify.Countries)+len(c.Countries))
	for code, loc := range classify.Countries {
		countries[code] = loc
	}
	for code, loc := range c.Countries {
		countries[code] = classify.Location{Continent: loc.Continent, Country: loc.Country}
	}
	genres := classify.Genres
	if len(c.Genres) > 0 {
		genres = make([]classify.GenreRule, 0, len(c.Genres))
		for _, g := range c.Genres {
			genres = append(genres, classify.GenreRule{Keyword: g.Keyword, Genre: g.Genre})
		}
	}
	return classify.New(countries, genres)
}

// Rules compiles the configured resolution rules. nil means the defaults.
func (c *Config) Rules() ([]resolution.Rule, error) {
	var rules []resolution.Rule
	for _, r := range c.ResolutionRules {
		rule, err := resolution.NewRule(resolution.Tag(r.Tag), r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("resolution_rules: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Tagger returns nil when resolution tags are off.
func (c *Config) Tagger() (*resolution.Tagger, error) {
	if !c.AppendResolutionTag {
		return nil, nil
	}
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	fallback, err := resolution.ParseTag(c.ResolutionFallback)
	if err != nil {
		return nil, err
	}
	return resolution.New(rules, fallback), nil
}
