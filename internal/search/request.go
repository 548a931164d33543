// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/granule-search/internal/validate"
	"github.com/pdiddy/granule-search/pkg/types"
)

// RequestParams holds search parameters as strings, as given on the command
// line or in an HTTP query.
type RequestParams struct {
	Dataset  string
	Start    string
	End      string
	BBox     string
	Provider string
	Protocol string
	PageSize int
}

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseRequest converts p into a validated SearchRequest. An empty End
// defaults to now.
func ParseRequest(p RequestParams, now time.Time) (types.SearchRequest, error) {
	req := types.SearchRequest{
		DatasetID:    strings.TrimSpace(p.Dataset),
		Provider:     strings.TrimSpace(p.Provider),
		LinkProtocol: strings.TrimSpace(p.Protocol),
		PageSize:     p.PageSize,
	}

	if p.Start == "" {
		return req, fmt.Errorf("start time is required")
	}
	start, err := ParseTime(p.Start)
	if err != nil {
		return req, fmt.Errorf("invalid start time: %w", err)
	}
	req.TimeStart = start

	req.TimeEnd = now
	if p.End != "" {
		end, err := ParseTime(p.End)
		if err != nil {
			return req, fmt.Errorf("invalid end time: %w", err)
		}
		req.TimeEnd = end
	}

	if strings.TrimSpace(p.BBox) != "" {
		box, err := ParseBoundingBox(p.BBox)
		if err != nil {
			return req, err
		}
		req.Area = box
	}

	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("invalid search request: %w", err)
	}
	return req, nil
}

// ParseTime accepts RFC 3339 timestamps, or a date-time or date without a
// zone, which is taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an RFC 3339 timestamp or YYYY-MM-DD date", s)
}

// ParseBoundingBox parses "lonMin,latMin,lonMax,latMax".
func ParseBoundingBox(s string) (*types.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bounding box %q: want lonMin,latMin,lonMax,latMax", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bounding box %q: %w", s, err)
		}
		v[i] = f
	}
	return &types.BoundingBox{LonMin: v[0], LatMin: v[1], LonMax: v[2], LatMax: v[3]}, nil
}
