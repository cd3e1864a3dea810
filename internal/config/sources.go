// Package config holds the feed source list the ingestion pipeline polls.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"newsdigest/internal/domain/entity"
)

// ErrNoSources is returned when a sources file declares no feeds.
var ErrNoSources = errors.New("no feed sources configured")

// DefaultSources is the built-in list used when no sources file is given.
var DefaultSources = []entity.Source{
	{Name: "BBC News", FeedURL: "https://rss.app/feeds/50T8PbAHQqHn3vXf.xml"},
}

// Sources is an immutable, validated list of feed sources.
type Sources struct {
	items []entity.Source
}

// sourcesFile is the YAML layout:
//
//	sources:
//	  - name: BBC News
//	    url: https://feeds.bbci.co.uk/news/rss.xml
type sourcesFile struct {
	Sources []struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"sources"`
}

// NewSources validates items and returns a Sources holding its own copy.
// Names must be unique so log lines and metrics labels identify a feed.
func NewSources(items []entity.Source) (Sources, error) {
	if len(items) == 0 {
		return Sources{}, ErrNoSources
	}
	seen := make(map[string]struct{}, len(items))
	for i, s := range items {
		if err := s.Validate(); err != nil {
			return Sources{}, fmt.Errorf("source %d: %w", i, err)
		}
		if _, dup := seen[s.Name]; dup {
			return Sources{}, fmt.Errorf("source %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return Sources{items: slices.Clone(items)}, nil
}

// LoadSources reads a YAML sources file. An empty path yields DefaultSources.
func LoadSources(path string) (Sources, error) {
	if path == "" {
		return NewSources(DefaultSources)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes the YAML layout described on sourcesFile.
func ParseSources(data []byte) (Sources, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Sources{}, fmt.Errorf("parse sources file: %w", err)
	}

	items := make([]entity.Source, 0, len(file.Sources))
	for _, s := range file.Sources {
		items = append(items, entity.Source{Name: s.Name, FeedURL: s.URL})
	}
	return NewSources(items)
}

// All returns a copy of the sources in configuration order.
func (s Sources) All() []entity.Source {
	return slices.Clone(s.items)
}

// Len returns the number of sources.
func (s Sources) Len() int {
	return len(s.items)
}
