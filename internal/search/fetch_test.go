// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/granule-search/internal/httputil"
	"github.com/pdiddy/granule-search/internal/obs"
)

// --- fake search service ---

// fakeService answers GETs from canned page bodies keyed by startPage.
type fakeService struct {
	pages     map[int]string
	status    map[int]int
	requested []int
	queries   []url.Values
}

func (f *fakeService) Get(_ context.Context, rawURL string) (int, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, err
	}
	page, _ := strconv.Atoi(u.Query().Get(ParamStartPage))
	f.requested = append(f.requested, page)
	f.queries = append(f.queries, u.Query())
	if st, ok := f.status[page]; ok {
		return st, []byte("error"), nil
	}
	body, ok := f.pages[page]
	if !ok {
		return http.StatusInternalServerError, nil, nil
	}
	return http.StatusOK, []byte(body), nil
}

type testEntry struct {
	Title    string           `json:"title"`
	Provider *string          `json:"provider,omitempty"`
	Summary  *string          `json:"summary"`
	Links    []map[string]any `json:"links"`
}

// pageJSON renders a response page with the given header and entries.
func pageJSON(total, start, perPage int, entries ...testEntry) string {
	if entries == nil {
		entries = []testEntry{}
	}
	body := map[string]any{
		"header": map[string]any{
			"total_results":  total,
			"start_index":    start,
			"items_per_page": perPage,
		},
		"entries": entries,
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// titled returns n entries named prefix-0 ... prefix-(n-1).
func titled(prefix string, n int) []testEntry {
	out := make([]testEntry, n)
	for i := range out {
		out[i] = testEntry{Title: fmt.Sprintf("%s-%03d.nc", prefix, i)}
	}
	return out
}

// --- pagination termination ---

func TestFetchAllStopsAfterLastPage(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(250, 0, 100, titled("p0", 100)...),
		1: pageJSON(250, 1, 100, titled("p1", 100)...),
		2: pageJSON(250, 2, 100, titled("p2", 50)...),
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, svc.requested)
	require.Len(t, entries, 250)
	assert.Equal(t, "p0-000.nc", entries[0].Title)
	assert.Equal(t, "p1-000.nc", entries[100].Title)
	assert.Equal(t, "p2-049.nc", entries[249].Title)
}

func TestFetchAllZeroItemsPerPageTerminates(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(500, 0, 0),
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, []int{0}, svc.requested)
	assert.Empty(t, entries)
}

func TestFetchAllZeroItemsPerPageKeepsAccumulated(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(500, 0, 2, titled("a", 2)...),
		1: pageJSON(500, 1, 0),
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, svc.requested)
	assert.Len(t, entries, 2)
}

func TestFetchAllTerminationFormula(t *testing.T) {
	tests := []struct {
		name    string
		pages   map[int]string
		wantReq []int
	}{
		{
			// Partially filled single page reporting the requested size.
			name:    "short first page",
			pages:   map[int]string{0: pageJSON(3, 0, 10, titled("a", 3)...)},
			wantReq: []int{0},
		},
		{
			// Server pages smaller than requested: 5 results, 2 per page.
			name: "server page smaller than requested",
			pages: map[int]string{
				0: pageJSON(5, 0, 2, titled("a", 2)...),
				1: pageJSON(5, 1, 2, titled("b", 2)...),
				2: pageJSON(5, 2, 2, titled("c", 1)...),
			},
			wantReq: []int{0, 1, 2},
		},
		{
			// An exact multiple needs one more (empty) page before the
			// formula reports exhaustion.
			name: "exact multiple fetches trailing empty page",
			pages: map[int]string{
				0: pageJSON(200, 0, 100, titled("a", 100)...),
				1: pageJSON(200, 1, 100, titled("b", 100)...),
				2: pageJSON(200, 2, 100),
			},
			wantReq: []int{0, 1, 2},
		},
		{
			name:    "no results",
			pages:   map[int]string{0: pageJSON(0, 0, 100)},
			wantReq: []int{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{pages: tt.pages}
			_, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReq, svc.requested)
		})
	}
}

func TestFetchAllSendsQueryPerPage(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(3, 0, 2, titled("a", 2)...),
		1: pageJSON(3, 1, 2, titled("b", 1)...),
	}}
	req := baseRequest()
	req.Provider = "JPL"
	req.LinkProtocol = "HTTPS"

	_, err := FetchAll(context.Background(), svc, testEndpoint, req, FetchOptions{})

	require.NoError(t, err)
	require.Len(t, svc.queries, 2)
	for i, q := range svc.queries {
		assert.Equal(t, strconv.Itoa(i), q.Get(ParamStartPage))
		assert.Equal(t, "100", q.Get(ParamCount))
		assert.Equal(t, "JPL", q.Get(ParamSource))
		assert.Equal(t, "HTTPS", q.Get(ParamProtocol))
		assert.False(t, q.Has(ParamGeoBox))
	}
}

func TestFetchAllPaginationLimit(t *testing.T) {
	svc := &fakeService{pages: map[int]string{}}
	for i := 0; i < 10; i++ {
		svc.pages[i] = pageJSON(1_000_000, i, 1, titled(fmt.Sprintf("p%d", i), 1)...)
	}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{MaxPages: 3})

	var limitErr *PaginationLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)
	assert.Nil(t, entries)
	assert.Equal(t, []int{0, 1, 2}, svc.requested)
}

func TestFetchAllLastPageAtLimitSucceeds(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(3, 0, 2, titled("a", 2)...),
		1: pageJSON(3, 1, 2, titled("b", 1)...),
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{MaxPages: 2})

	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

// --- failures ---

func TestFetchAllHTTPStatusAbortsWithoutPartialResults(t *testing.T) {
	svc := &fakeService{
		pages:  map[int]string{0: pageJSON(300, 0, 100, titled("a", 100)...)},
		status: map[int]int{1: http.StatusServiceUnavailable},
	}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.False(t, statusErr.NotServed())
	assert.Nil(t, entries)
	assert.Equal(t, []int{0, 1}, svc.requested)
}

func TestFetchAllNotServed(t *testing.T) {
	svc := &fakeService{status: map[int]int{0: http.StatusNotFound}}

	_, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.NotServed())
	assert.Contains(t, err.Error(), "not served")
}

func TestFetchAllTransportError(t *testing.T) {
	netErr := errors.New("connection refused")
	getter := GetterFunc(func(context.Context, string) (int, []byte, error) {
		return 0, nil, netErr
	})

	entries, err := FetchAll(context.Background(), getter, testEndpoint, baseRequest(), FetchOptions{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, netErr)
	assert.Contains(t, transportErr.URL, testEndpoint)
	assert.Nil(t, entries)
}

func TestFetchAllCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := &fakeService{}

	_, err := FetchAll(ctx, svc, testEndpoint, baseRequest(), FetchOptions{})

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, svc.requested)
}

func TestFetchAllCancelledDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	getter := GetterFunc(func(ctx context.Context, _ string) (int, []byte, error) {
		calls++
		if calls == 1 {
			return http.StatusOK, []byte(pageJSON(3, 0, 1, titled("a", 1)...)), nil
		}
		cancel()
		return 0, nil, ctx.Err()
	})

	entries, err := FetchAll(ctx, getter, testEndpoint, baseRequest(), FetchOptions{})

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, 1, cancelled.Page)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, entries)
}

func TestFetchAllMalformedPage(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(2, 0, 1, titled("a", 1)...),
		1: `<html>oops</html>`,
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Page)
	assert.Nil(t, entries)
}

func TestFetchAllUntitledEntriesAbort(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: `{"header": {"total_results": 3, "start_index": 0, "items_per_page": 10}, "entries": [
			{"provider": "JPL", "links": [{"href": "https://jpl/x.nc", "rel": "enclosure", "title": "HTTPS"}]},
			{"provider": "NCEI", "links": [{"href": "ftp://ncei/y.nc", "rel": "enclosure", "title": "FTP"}]}
		]}`,
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{})

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Page)
	assert.Equal(t, "malformed", ErrorKind(err))
	assert.Nil(t, entries)
}

func TestFetchAllHugeStartIndexTerminates(t *testing.T) {
	svc := &fakeService{pages: map[int]string{
		0: pageJSON(10, math.MaxInt, 100, titled("a", 1)...),
	}}

	entries, err := FetchAll(context.Background(), svc, testEndpoint, baseRequest(), FetchOptions{MaxPages: 5})

	require.NoError(t, err)
	assert.Equal(t, []int{0}, svc.requested)
	assert.Len(t, entries, 1)
}

// --- page decoding ---

func TestDecodePage(t *testing.T) {
	body := `{
	  "header": {"total_results": 2, "start_index": 0, "items_per_page": 10},
	  "entries": [
	    {
	      "title": "20200101000000-JPL-L2P_GHRSST-SSTskin-MODIS_A-D-v02.0-fv01.0.nc",
	      "id": "granule-1",
	      "summary": null,
	      "updated": "2020-01-02T03:04:05Z",
	      "date": "2020-01-01T00:00:00Z/2020-01-01T00:05:00Z",
	      "polygon": "10 20 10 30 20 30 10 20",
	      "provider": "JPL",
	      "links": [
	        {"href": "https://jpl/a.nc", "rel": "enclosure", "title": "HTTPS", "type": "application/x-netcdf"},
	        {"href": "ftp://jpl/a.nc", "rel": "enclosure", "title": "FTP"}
	      ]
	    },
	    {"title": "b", "links": [{"href": "ftp://ncei/b", "rel": "enclosure", "title": "FTP", "provider": "NCEI"}]}
	  ]
	}`

	page, err := decodePage([]byte(body), 0)

	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalResults)
	assert.Equal(t, 0, page.StartIndex)
	assert.Equal(t, 10, page.ItemsPerPage)
	require.Len(t, page.Entries, 2)

	e := page.Entries[0]
	assert.Equal(t, "granule-1", *e.ID)
	assert.Nil(t, e.Summary)
	assert.Nil(t, e.Box)
	assert.Equal(t, "10 20 10 30 20 30 10 20", *e.Polygon)
	assert.Equal(t, "JPL", *e.Provider)
	require.Len(t, e.Links, 2)
	assert.Equal(t, "application/x-netcdf", e.Links[0].Type)
	assert.Empty(t, e.Links[1].Type)

	assert.Nil(t, page.Entries[1].Provider)
	assert.Equal(t, "NCEI", page.Entries[1].Links[0].Provider)
}

func TestDecodePageStringCounters(t *testing.T) {
	body := `{"header": {"total_results": "42", "start_index": "1", "items_per_page": " 20 "}, "entries": []}`

	page, err := decodePage([]byte(body), 1)

	require.NoError(t, err)
	assert.Equal(t, 42, page.TotalResults)
	assert.Equal(t, 1, page.StartIndex)
	assert.Equal(t, 20, page.ItemsPerPage)
	assert.Empty(t, page.Entries)
}

func TestDecodePageNullEntries(t *testing.T) {
	page, err := decodePage([]byte(`{"header": {"total_results": 0, "start_index": 0, "items_per_page": 0}, "entries": null}`), 0)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}

func TestDecodePageMalformed(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"not json", `not json`, "invalid JSON"},
		{"array body", `[]`, "invalid JSON"},
		{"empty body", ``, "invalid JSON"},
		{"null body", `null`, "missing header"},
		{"missing header", `{"entries": []}`, "missing header"},
		{"missing entries", `{"header": {"total_results": 0, "start_index": 0, "items_per_page": 0}}`, "missing entries"},
		{"null header", `{"header": null, "entries": []}`, "header is null"},
		{"header not object", `{"header": 5, "entries": []}`, "invalid header"},
		{"missing counter", `{"header": {"total_results": 1, "start_index": 0}, "entries": []}`, "header missing items_per_page"},
		{"null counter", `{"header": {"total_results": null, "start_index": 0, "items_per_page": 1}, "entries": []}`, "header missing total_results"},
		{"non-numeric counter", `{"header": {"total_results": "many", "start_index": 0, "items_per_page": 1}, "entries": []}`, "invalid header"},
		{"fractional counter", `{"header": {"total_results": 1.5, "start_index": 0, "items_per_page": 1}, "entries": []}`, "invalid header"},
		{"negative counter", `{"header": {"total_results": 1, "start_index": -1, "items_per_page": 1}, "entries": []}`, "start_index is negative"},
		{"entries not array", `{"header": {"total_results": 1, "start_index": 0, "items_per_page": 1}, "entries": {}}`, "invalid entries"},
		{"entry title wrong type", `{"header": {"total_results": 1, "start_index": 0, "items_per_page": 1}, "entries": [{"title": 7}]}`, "invalid entries"},
		{"null entry", `{"header": {"total_results": 2, "start_index": 0, "items_per_page": 2}, "entries": [{"title": "a.nc"}, null]}`, "entry 1 is null"},
		{"missing title", `{"header": {"total_results": 1, "start_index": 0, "items_per_page": 1}, "entries": [{"provider": "JPL"}]}`, "entry 0 has no title"},
		{"empty title", `{"header": {"total_results": 1, "start_index": 0, "items_per_page": 1}, "entries": [{"title": "  "}]}`, "entry 0 has no title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePage([]byte(tt.body), 4)
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, 4, malformed.Page)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

// --- over real HTTP ---

func TestFetchAllOverHTTPIsSequential(t *testing.T) {
	var inFlight, maxInFlight int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		if n > atomic.LoadInt32(&maxInFlight) {
			atomic.StoreInt32(&maxInFlight, n)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get(ParamStartPage))
		cnt := min(2, 5-2*page)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, pageJSON(5, page, 2, titled(fmt.Sprintf("p%d", page), cnt)...))
	}))
	defer ts.Close()

	m := obs.NewMetrics(prometheus.NewRegistry())
	getter := &httputil.Client{HTTP: ts.Client()}

	entries, err := FetchAll(context.Background(), getter, ts.URL, baseRequest(), FetchOptions{Metrics: m})

	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("MODIS_A-JPL-L2P-v2019.0")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.EntriesFetched.WithLabelValues("MODIS_A-JPL-L2P-v2019.0")))
}
