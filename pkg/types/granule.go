// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DownloadLink is one way to retrieve a granule file from one provider.
type DownloadLink struct {
	// Href is the download URI.
	Href string `json:"href" yaml:"href"`

	// Rel is the link-type code (e.g. "enclosure").
	Rel string `json:"rel" yaml:"rel"`

	// Title is the human label, usually the protocol name ("FTP", "HTTPS", "S3").
	Title string `json:"title" yaml:"title"`

	// Type is the media type, empty when the service omits it.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Provider is the data assembly center that serves this link.
	Provider string `json:"provider" yaml:"provider"`
}

// RawGranule is one granule record as returned by the search service for one
// (file, provider) observation. Descriptive attributes are nil when the
// service returned null or omitted them.
type RawGranule struct {
	Title    string         `json:"title" yaml:"title"`
	Links    []DownloadLink `json:"links" yaml:"links"`
	Provider *string        `json:"provider,omitempty" yaml:"provider,omitempty"`

	ID      *string `json:"id" yaml:"id"`
	Summary *string `json:"summary" yaml:"summary"`
	Updated *string `json:"updated" yaml:"updated"`
	Date    *string `json:"date" yaml:"date"`
	Box     *string `json:"box" yaml:"box"`
	Polygon *string `json:"polygon" yaml:"polygon"`
	Line    *string `json:"line" yaml:"line"`
}

// Granule is the merged catalog entry for one file. Every link carries the
// provider it came from, so the record itself has no provider.
type Granule struct {
	// Key is the normalized file identifier (title with a ".nc" suffix).
	Key string `json:"key" yaml:"key"`

	Title string `json:"title" yaml:"title"`

	ID      *string `json:"id" yaml:"id"`
	Summary *string `json:"summary" yaml:"summary"`
	Updated *string `json:"updated" yaml:"updated"`
	Date    *string `json:"date" yaml:"date"`
	Box     *string `json:"box" yaml:"box"`
	Polygon *string `json:"polygon" yaml:"polygon"`
	Line    *string `json:"line" yaml:"line"`

	Links []DownloadLink `json:"links" yaml:"links"`
}

// ResultPage is one decoded response page from the search service.
type ResultPage struct {
	TotalResults int
	StartIndex   int
	ItemsPerPage int
	Entries      []RawGranule
}

// Exhausted reports whether this page is the last one the service has.
// The service is exhausted when total_results < (start_index+1)*items_per_page.
// A page reporting zero items per page always ends pagination. The comparison
// is done by division so huge counters cannot overflow.
func (p ResultPage) Exhausted() bool {
	if p.ItemsPerPage == 0 {
		return true
	}
	return p.TotalResults/p.ItemsPerPage <= p.StartIndex
}
