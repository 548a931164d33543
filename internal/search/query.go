// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/granule-search/pkg/types"
)

// OpenSearch query parameter names.
const (
	ParamDatasetID = "datasetId"
	ParamStartPage = "startPage"
	ParamCount     = "count"
	ParamTimeStart = "timeStart"
	ParamTimeEnd   = "timeEnd"
	ParamGeoBox    = "geoBox"
	ParamSource    = "source"
	ParamProtocol  = "protocol"
)

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is a search endpoint plus its parameters in the order they were added.
type Query struct {
	Endpoint string
	Params   []Param
}

// Get returns the value for key and whether it is present.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Encode renders the parameters as a query string, preserving their order.
// Keys and values are percent-encoded with url.QueryEscape.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// URL returns the full request URL.
func (q Query) URL() string {
	if len(q.Params) == 0 {
		return q.Endpoint
	}
	sep := "?"
	if strings.Contains(q.Endpoint, "?") {
		sep = "&"
	}
	return q.Endpoint + sep + q.Encode()
}

// BuildQuery builds the request for one page of a search. It performs no I/O
// and never fails: optional fields that are absent are simply left out, each
// independently of the others.
func BuildQuery(endpoint string, req types.SearchRequest, page int) Query {
	q := Query{Endpoint: endpoint}
	add := func(k, v string) { q.Params = append(q.Params, Param{Key: k, Value: v}) }

	add(ParamDatasetID, req.DatasetID)
	add(ParamStartPage, strconv.Itoa(page))
	add(ParamCount, strconv.Itoa(req.PageSize))
	add(ParamTimeStart, formatTime(req.TimeStart))
	add(ParamTimeEnd, formatTime(req.TimeEnd))

	if req.Area != nil {
		add(ParamGeoBox, FormatBoundingBox(*req.Area))
	}
	if req.Provider != "" {
		add(ParamSource, req.Provider)
	}
	if req.LinkProtocol != "" {
		add(ParamProtocol, req.LinkProtocol)
	}
	return q
}

// FormatBoundingBox renders a box as "lonMin,latMin,lonMax,latMax" using the
// shortest decimal form that round-trips.
func FormatBoundingBox(b types.BoundingBox) string {
	parts := []string{
		strconv.FormatFloat(b.LonMin, 'f', -1, 64),
		strconv.FormatFloat(b.LatMin, 'f', -1, 64),
		strconv.FormatFloat(b.LonMax, 'f', -1, 64),
		strconv.FormatFloat(b.LatMax, 'f', -1, 64),
	}
	return strings.Join(parts, ",")
}

// formatTime renders t in its own offset so the service sees the caller's
// timestamp unchanged.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
