// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/granule-search/internal/catalog"
	"github.com/pdiddy/granule-search/internal/search"
	"github.com/pdiddy/granule-search/pkg/types"
)

// granulesResponse is the body of a successful /granules request.
type granulesResponse struct {
	SearchID  string              `json:"search_id"`
	Request   types.SearchRequest `json:"request"`
	Total     int                 `json:"total"`
	Links     int                 `json:"links"`
	Merged    int                 `json:"merged"`
	Providers map[string]int      `json:"providers"`
	Skipped   []string            `json:"skipped,omitempty"`
	Granules  *catalog.Catalog    `json:"granules"`
}

// handleGranules runs a search from query parameters:
// dataset, start, end, bbox, provider, protocol, page_size and repeated
// providers.
func (s *Server) handleGranules(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	q := r.URL.Query()

	pageSize := s.cfg.PageSize
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "page_size must be an integer", reqID)
			return
		}
		pageSize = n
	}

	req, err := search.ParseRequest(search.RequestParams{
		Dataset:  q.Get("dataset"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		BBox:     q.Get("bbox"),
		Provider: q.Get("provider"),
		Protocol: q.Get("protocol"),
		PageSize: pageSize,
	}, s.now())
	if err != nil {
		badRequest(w, err.Error(), reqID)
		return
	}

	providers := providersFor(req, q["providers"], s.cfg.Providers)

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	res, err := search.SearchProviders(ctx, s.cfg.Getter, req, providers, s.cfg.Options)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("kind", search.ErrorKind(err)).Msg("granule search failed")
		writeError(w, statusFor(err), err.Error(), search.ErrorKind(err), reqID)
		return
	}

	writeJSON(w, http.StatusOK, granulesResponse{
		SearchID:  res.SearchID,
		Request:   req,
		Total:     res.Catalog.Len(),
		Links:     res.Catalog.LinkCount(),
		Merged:    res.Catalog.Merged(),
		Providers: res.Catalog.Providers(),
		Skipped:   res.Skipped,
		Granules:  res.Catalog,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// providersFor picks the providers to search. An explicit provider wins, then
// the repeated providers parameter (comma lists allowed), then the configured
// defaults.
func providersFor(req types.SearchRequest, params, defaults []string) []string {
	if req.Provider != "" {
		return []string{req.Provider}
	}
	var out []string
	for _, p := range params {
		for _, part := range strings.Split(p, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return defaults
}

// statusFor maps a search error to the HTTP status returned to the caller.
func statusFor(err error) int {
	var (
		status    *search.HTTPStatusError
		cancelled *search.CancelledError
	)
	switch {
	case errors.As(err, &status) && status.NotServed():
		return http.StatusNotFound
	case errors.As(err, &cancelled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
