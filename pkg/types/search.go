// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for granule-search: the search
// request, the raw and merged granule records, and configuration.
package types

import "time"

// BoundingBox is a geographic area in degrees. Ordering of min/max is not
// checked here; the remote service validates it.
type BoundingBox struct {
	LonMin float64 `json:"lon_min" yaml:"lon_min" validate:"finite"`
	LatMin float64 `json:"lat_min" yaml:"lat_min" validate:"finite"`
	LonMax float64 `json:"lon_max" yaml:"lon_max" validate:"finite"`
	LatMax float64 `json:"lat_max" yaml:"lat_max" validate:"finite"`
}

// SearchRequest describes one granule search. Optional string fields are
// absent when empty; Area is absent when nil.
type SearchRequest struct {
	// DatasetID is the dataset identifier understood by the remote service.
	DatasetID string `json:"dataset_id" yaml:"dataset_id" validate:"required,max=128"`

	// TimeStart and TimeEnd bound the granule time window. They are passed
	// to the service as given, without timezone conversion.
	TimeStart time.Time `json:"time_start" yaml:"time_start" validate:"required"`
	TimeEnd   time.Time `json:"time_end" yaml:"time_end" validate:"required,gtefield=TimeStart"`

	// Area restricts results to a bounding box.
	Area *BoundingBox `json:"area,omitempty" yaml:"area,omitempty" validate:"omitempty"`

	// Provider is a data assembly center code (e.g. "JPL", "NCEI").
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// LinkProtocol asks the service to include only links of this protocol.
	LinkProtocol string `json:"link_protocol,omitempty" yaml:"link_protocol,omitempty"`

	// PageSize is the number of entries requested per page.
	PageSize int `json:"page_size" yaml:"page_size" validate:"gt=0"`
}

// WithProvider returns a copy of the request filtered to one provider.
func (r SearchRequest) WithProvider(provider string) SearchRequest {
	r.Provider = provider
	return r
}
