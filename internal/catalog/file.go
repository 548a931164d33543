// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/granule-search/pkg/types"
)

// File is the on-disk representation of a search and its merged catalog.
// A saved file can be reloaded and re-rendered without querying the service.
type File struct {
	Request  types.SearchRequest `yaml:"request"`
	Granules []types.Granule     `yaml:"granules"`
	Summary  FileSummary         `yaml:"summary"`
}

// FileSummary stores catalog statistics and a timestamp.
type FileSummary struct {
	SearchID  string         `yaml:"search_id,omitempty"`
	Total     int            `yaml:"total"`
	Links     int            `yaml:"links"`
	Merged    int            `yaml:"merged"`
	Providers map[string]int `yaml:"providers,omitempty"`
	Skipped   []string       `yaml:"skipped,omitempty"`
	Timestamp time.Time      `yaml:"timestamp"`
}

// NewFile assembles a File from a request and its catalog.
func NewFile(req types.SearchRequest, c *Catalog) File {
	return File{
		Request:  req,
		Granules: c.Granules(),
		Summary: FileSummary{
			Total:     c.Len(),
			Links:     c.LinkCount(),
			Merged:    c.Merged(),
			Providers: c.Providers(),
			Timestamp: time.Now().UTC(),
		},
	}
}

// WriteFile saves f as YAML to path.
func WriteFile(path string, f File) error {
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling catalog file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a previously saved catalog file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return &f, nil
}

// Catalog rebuilds the ordered catalog from the file's granules.
func (f *File) Catalog() *Catalog {
	return FromGranules(f.Granules)
}
