// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/granule-search/pkg/types"
)

// OpenSearch response JSON structures.
type pageHeader struct {
	TotalResults *flexInt `json:"total_results"`
	StartIndex   *flexInt `json:"start_index"`
	ItemsPerPage *flexInt `json:"items_per_page"`
}

// flexInt accepts a JSON number or a string holding an integer. OpenSearch
// services commonly serialize header counters as strings.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = flexInt(v)
	return nil
}

// decodePage parses one response body. Any deviation from the
// {"header": {...}, "entries": [...]} shape is a MalformedResponseError.
func decodePage(body []byte, page int) (types.ResultPage, error) {
	malformed := func(reason string, err error) (types.ResultPage, error) {
		return types.ResultPage{}, &MalformedResponseError{Page: page, Reason: reason, Err: err}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return malformed("invalid JSON", err)
	}
	rawHeader, ok := top["header"]
	if !ok {
		return malformed("missing header", nil)
	}
	rawEntries, ok := top["entries"]
	if !ok {
		return malformed("missing entries", nil)
	}

	var h *pageHeader
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return malformed("invalid header", err)
	}
	if h == nil {
		return malformed("header is null", nil)
	}
	counters := []struct {
		name string
		val  *flexInt
	}{
		{"total_results", h.TotalResults},
		{"start_index", h.StartIndex},
		{"items_per_page", h.ItemsPerPage},
	}
	for _, c := range counters {
		if c.val == nil {
			return malformed("header missing "+c.name, nil)
		}
		if *c.val < 0 {
			return malformed(fmt.Sprintf("header %s is negative (%d)", c.name, *c.val), nil)
		}
	}

	var decoded []*types.RawGranule
	if err := json.Unmarshal(rawEntries, &decoded); err != nil {
		return malformed("invalid entries", err)
	}
	// Title is the granule identity; an entry without one cannot be merged.
	var entries []types.RawGranule
	for i, e := range decoded {
		if e == nil {
			return malformed(fmt.Sprintf("entry %d is null", i), nil)
		}
		if strings.TrimSpace(e.Title) == "" {
			return malformed(fmt.Sprintf("entry %d has no title", i), nil)
		}
		entries = append(entries, *e)
	}

	return types.ResultPage{
		TotalResults: int(*h.TotalResults),
		StartIndex:   int(*h.StartIndex),
		ItemsPerPage: int(*h.ItemsPerPage),
		Entries:      entries,
	}, nil
}
