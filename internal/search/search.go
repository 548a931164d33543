// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries an OpenSearch granule-discovery service, pages
// through every result, and merges the granules reported by each provider
// into one catalog.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/granule-search/internal/catalog"
	"github.com/pdiddy/granule-search/internal/obs"
	"github.com/pdiddy/granule-search/pkg/types"
)

// Options configures a search.
type Options struct {
	// Endpoint is the granule search URL.
	Endpoint string

	// MaxPages caps the pages fetched per provider (default DefaultMaxPages).
	MaxPages int

	// SkipUnserved makes SearchProviders skip providers answering 404.
	SkipUnserved bool

	// Metrics may be nil.
	Metrics *obs.Metrics
}

// OptionsFromConfig builds Options from the search configuration.
func OptionsFromConfig(cfg types.SearchConfig, m *obs.Metrics) Options {
	return Options{
		Endpoint:     cfg.Endpoint,
		MaxPages:     cfg.MaxPages,
		SkipUnserved: cfg.SkipUnserved,
		Metrics:      m,
	}
}

// Result is the outcome of a multi-provider search.
type Result struct {
	// SearchID identifies this search in logs.
	SearchID string

	Catalog *catalog.Catalog

	// Skipped lists providers that answered 404 and were skipped.
	Skipped []string
}

// Search fetches every page for req and returns the merged catalog. It either
// returns the complete catalog or fails as a whole.
func Search(ctx context.Context, getter Getter, req types.SearchRequest, opts Options) (*catalog.Catalog, error) {
	ctx, _ = withSearchLogger(ctx, req)
	opts.Metrics.IncSearches(req.DatasetID)

	entries, err := fetchProvider(ctx, getter, req, opts)
	if err != nil {
		opts.Metrics.IncSearchError(ErrorKind(err))
		return nil, err
	}
	return normalize(ctx, req, entries, opts), nil
}

// SearchProviders runs one search per provider, in order, and merges all
// entries into a single catalog. Entries that do not name a provider are
// attributed to the provider they were fetched for. With no providers it is
// a single search using req.Provider.
func SearchProviders(ctx context.Context, getter Getter, req types.SearchRequest, providers []string, opts Options) (Result, error) {
	ctx, id := withSearchLogger(ctx, req)
	log := zerolog.Ctx(ctx)
	opts.Metrics.IncSearches(req.DatasetID)

	if len(providers) == 0 {
		providers = []string{req.Provider}
	}

	res := Result{SearchID: id}
	var all []types.RawGranule
	for _, p := range providers {
		entries, err := fetchProvider(ctx, getter, req.WithProvider(p), opts)
		if err != nil {
			var status *HTTPStatusError
			if opts.SkipUnserved && errors.As(err, &status) && status.NotServed() {
				log.Warn().Str("provider", p).Msg("dataset not served by provider, skipping")
				res.Skipped = append(res.Skipped, p)
				continue
			}
			opts.Metrics.IncSearchError(ErrorKind(err))
			if p == "" {
				return Result{}, err
			}
			return Result{}, fmt.Errorf("provider %s: %w", p, err)
		}
		all = append(all, entries...)
	}

	res.Catalog = normalize(ctx, req, all, opts)
	return res, nil
}

// fetchProvider runs the pagination loop and attributes provider-less
// entries to the request's provider filter, if any.
func fetchProvider(ctx context.Context, getter Getter, req types.SearchRequest, opts Options) ([]types.RawGranule, error) {
	entries, err := FetchAll(ctx, getter, opts.Endpoint, req, FetchOptions{
		MaxPages: opts.MaxPages,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	if req.Provider != "" {
		stampProvider(entries, req.Provider)
	}
	return entries, nil
}

func stampProvider(entries []types.RawGranule, provider string) {
	for i := range entries {
		if entries[i].Provider == nil {
			p := provider
			entries[i].Provider = &p
		}
	}
}

func normalize(ctx context.Context, req types.SearchRequest, entries []types.RawGranule, opts Options) *catalog.Catalog {
	c := catalog.Normalize(entries)
	opts.Metrics.AddMerged(req.DatasetID, c.Merged())
	zerolog.Ctx(ctx).Debug().
		Int("entries", len(entries)).
		Int("granules", c.Len()).
		Int("merged", c.Merged()).
		Msg("normalized granule catalog")
	return c
}

// withSearchLogger tags the context logger with a fresh search id and the
// dataset.
func withSearchLogger(ctx context.Context, req types.SearchRequest) (context.Context, string) {
	id := uuid.NewString()
	l := zerolog.Ctx(ctx).With().Str("search_id", id).Str("dataset", req.DatasetID).Logger()
	return l.WithContext(ctx), id
}
