// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// FormatTable writes the catalog as a human-readable table to w.
func FormatTable(c *Catalog, w io.Writer) {
	if c.Len() == 0 {
		fmt.Fprintln(w, "No granules found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-5s  %s\n", "#", "Granule", "Links", "Providers")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, g := range c.Granules() {
		var providers []string
		seen := make(map[string]bool)
		for _, l := range g.Links {
			if l.Provider != "" && !seen[l.Provider] {
				seen[l.Provider] = true
				providers = append(providers, l.Provider)
			}
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-5d  %s\n",
			i+1, truncate(g.Key, 60), len(g.Links), strings.Join(providers, ","))
	}

	fmt.Fprintf(w, "\n%d granules, %d links", c.Len(), c.LinkCount())
	if c.Merged() > 0 {
		fmt.Fprintf(w, " (%d duplicate entries merged)", c.Merged())
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the catalog as an indented JSON object keyed by granule.
func FormatJSON(c *Catalog, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// FormatProviders writes per-provider link counts, sorted by provider name.
func FormatProviders(c *Catalog, w io.Writer) {
	counts := c.Providers()
	names := make([]string, 0, len(counts))
	for p := range counts {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		label := p
		if label == "" {
			label = "(unknown)"
		}
		fmt.Fprintf(w, "%-12s %d links\n", label, counts[p])
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
