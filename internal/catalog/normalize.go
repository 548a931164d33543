// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog merges raw granule entries reported by several providers
// into one record per file and renders the result.
package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pdiddy/granule-search/pkg/types"
)

// fileSuffix is the extension every granule key carries. One provider omits
// it from titles, so it is appended whenever missing.
const fileSuffix = ".nc"

// Key returns the normalized file identifier for a granule title.
func Key(title string) string {
	if strings.HasSuffix(title, fileSuffix) {
		return title
	}
	return title + fileSuffix
}

// Catalog is an ordered mapping from normalized file identifier to merged
// granule record. Keys iterate in ascending byte order.
type Catalog struct {
	keys   []string
	byKey  map[string]*types.Granule
	merged int
}

// Normalize merges entries by normalized title, in the order given. The first
// entry for a key becomes the record; later entries append their links and
// overwrite each attribute for which they carry a non-null value.
func Normalize(entries []types.RawGranule) *Catalog {
	c := &Catalog{byKey: make(map[string]*types.Granule)}
	for _, e := range entries {
		c.add(e)
	}
	sort.Strings(c.keys)
	return c
}

// FromGranules builds a catalog from already merged records, e.g. read back
// from a catalog file. Records sharing a key are merged like raw entries.
func FromGranules(granules []types.Granule) *Catalog {
	entries := make([]types.RawGranule, 0, len(granules))
	for _, g := range granules {
		entries = append(entries, types.RawGranule{
			Title:   g.Title,
			Links:   g.Links,
			ID:      g.ID,
			Summary: g.Summary,
			Updated: g.Updated,
			Date:    g.Date,
			Box:     g.Box,
			Polygon: g.Polygon,
			Line:    g.Line,
		})
	}
	return Normalize(entries)
}

func (c *Catalog) add(e types.RawGranule) {
	links := tagLinks(e)
	key := Key(e.Title)

	g, ok := c.byKey[key]
	if !ok {
		c.byKey[key] = &types.Granule{
			Key:     key,
			Title:   e.Title,
			ID:      clone(e.ID),
			Summary: clone(e.Summary),
			Updated: clone(e.Updated),
			Date:    clone(e.Date),
			Box:     clone(e.Box),
			Polygon: clone(e.Polygon),
			Line:    clone(e.Line),
			Links:   links,
		}
		c.keys = append(c.keys, key)
		return
	}

	c.merged++
	g.Links = append(g.Links, links...)
	if e.Title != "" {
		g.Title = e.Title
	}
	overwrite(&g.ID, e.ID)
	overwrite(&g.Summary, e.Summary)
	overwrite(&g.Updated, e.Updated)
	overwrite(&g.Date, e.Date)
	overwrite(&g.Box, e.Box)
	overwrite(&g.Polygon, e.Polygon)
	overwrite(&g.Line, e.Line)
}

// tagLinks copies the entry's links, stamping the entry's provider on any
// link that does not name one.
func tagLinks(e types.RawGranule) []types.DownloadLink {
	links := make([]types.DownloadLink, len(e.Links))
	copy(links, e.Links)
	if e.Provider == nil {
		return links
	}
	for i := range links {
		if links[i].Provider == "" {
			links[i].Provider = *e.Provider
		}
	}
	return links
}

// overwrite replaces *dst with src unless src is null.
func overwrite(dst **string, src *string) {
	if src != nil {
		*dst = clone(src)
	}
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Len returns the number of distinct granules.
func (c *Catalog) Len() int { return len(c.keys) }

// Merged returns how many raw entries were folded into an existing record.
func (c *Catalog) Merged() int { return c.merged }

// Keys returns the granule keys in ascending order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the record for key.
func (c *Catalog) Get(key string) (types.Granule, bool) {
	g, ok := c.byKey[key]
	if !ok {
		return types.Granule{}, false
	}
	return *g, true
}

// Granules returns the records in key order.
func (c *Catalog) Granules() []types.Granule {
	out := make([]types.Granule, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, *c.byKey[k])
	}
	return out
}

// LinkCount returns the total number of download links across all records.
func (c *Catalog) LinkCount() int {
	n := 0
	for _, g := range c.byKey {
		n += len(g.Links)
	}
	return n
}

// Providers returns the number of links contributed by each provider. Links
// without a provider are counted under "".
func (c *Catalog) Providers() map[string]int {
	counts := make(map[string]int)
	for _, g := range c.byKey {
		for _, l := range g.Links {
			counts[l.Provider]++
		}
	}
	return counts
}

// MarshalJSON encodes the catalog as a JSON object keyed by granule key, with
// keys in catalog order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.byKey[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
