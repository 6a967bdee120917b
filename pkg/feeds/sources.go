package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package feeds holds feed source configuration and the RSS/Atom fetcher.

// Source is one polled feed.
type Source struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	URL    string         `json:"url" yaml:"url"`
	Config map[string]any `json:"config,omitempty" yaml:"config"`
}

type sourcesFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry is an ordered, immutable set of sources.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// NewRegistry validates the given sources and keeps their order.
func NewRegistry(sources []Source) (*Registry, error) {
	if len(sources) == 0 {
		return nil, errors.New("no feed sources configured")
	}

	reg := &Registry{
		sources: make([]Source, len(sources)),
		idx:     make(map[string]Source, len(sources)),
	}
	for i := range sources {
		src := sanitizeSource(sources[i])
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := reg.idx[src.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		reg.sources[i] = src
		reg.idx[src.ID] = src
	}
	return reg, nil
}

// LoadRegistry loads sources from a YAML, JSON or OPML file.
// An empty path yields the compiled-in default list.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultRegistry()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	sources, err := parseSources(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}
	return NewRegistry(sources)
}

type unmarshalFn func([]byte, any) error

func parseSources(data []byte, ext string) ([]Source, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	if ext == ".opml" || ext == ".xml" {
		return parseOPML(data)
	}

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file sourcesFile
		if err := d.fn(data, &file); err == nil {
			return file.Sources, nil
		}
	}

	return nil, errors.New("sources file format not recognized (expected YAML, JSON or OPML)")
}

func sanitizeSource(s Source) Source {
	s.URL = strings.TrimSpace(s.URL)
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)

	if s.ID == "" {
		s.ID = s.URL
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSource(s Source) error {
	if s.URL == "" {
		return fmt.Errorf("url is required for source %q", s.ID)
	}
	return nil
}

// All returns a copy of the sources in configured order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source with the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.idx[strings.TrimSpace(id)]
	return s, ok
}

// Len returns the number of configured sources.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
