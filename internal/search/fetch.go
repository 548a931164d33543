// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/granule-search/internal/obs"
	"github.com/pdiddy/granule-search/pkg/types"
)

// DefaultMaxPages is the page cap used when FetchOptions.MaxPages is unset.
const DefaultMaxPages = 1000

// Getter performs an HTTP GET and returns the status code and the full body.
// A non-2xx status is returned as a status, not as an error; err is reserved
// for failures reaching the server.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(ctx context.Context, url string) (int, []byte, error)

// Get calls f.
func (f GetterFunc) Get(ctx context.Context, url string) (int, []byte, error) {
	return f(ctx, url)
}

// FetchOptions controls the pagination loop.
type FetchOptions struct {
	// MaxPages caps the number of pages fetched (default DefaultMaxPages).
	MaxPages int

	// Metrics records page counts and latency. May be nil.
	Metrics *obs.Metrics
}

// FetchAll pages through the search service until it reports the last page
// and returns every entry in page order. Pages are requested strictly one
// after another. Any failure aborts the whole fetch and discards what was
// accumulated.
func FetchAll(ctx context.Context, getter Getter, endpoint string, req types.SearchRequest, opts FetchOptions) ([]types.RawGranule, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	log := zerolog.Ctx(ctx)

	var entries []types.RawGranule
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, &PaginationLimitError{Limit: maxPages}
		}
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Page: page, Err: err}
		}

		q := BuildQuery(endpoint, req, page)
		start := time.Now()
		rp, err := fetchPage(ctx, getter, q.URL(), page)
		if err != nil {
			return nil, err
		}
		opts.Metrics.ObservePage(req.DatasetID, len(rp.Entries), time.Since(start))

		log.Debug().
			Int("page", page).
			Int("total_results", rp.TotalResults).
			Int("start_index", rp.StartIndex).
			Int("items_per_page", rp.ItemsPerPage).
			Int("entries", len(rp.Entries)).
			Msg("fetched granule page")

		entries = append(entries, rp.Entries...)
		if rp.Exhausted() {
			log.Info().Int("pages", page+1).Int("entries", len(entries)).Msg("granule search complete")
			return entries, nil
		}
	}
}

// fetchPage performs one GET and decodes the page, classifying failures.
func fetchPage(ctx context.Context, getter Getter, url string, page int) (types.ResultPage, error) {
	status, body, err := getter.Get(ctx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.ResultPage{}, &CancelledError{Page: page, Err: ctxErr}
		}
		return types.ResultPage{}, &TransportError{URL: url, Err: err}
	}
	if status < 200 || status > 299 {
		return types.ResultPage{}, &HTTPStatusError{URL: url, StatusCode: status}
	}
	return decodePage(body, page)
}
