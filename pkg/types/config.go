package types

import "time"

// HTTPConfig holds shared HTTP settings for outbound requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "granule-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for granule searches.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the OpenSearch granule search URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// PageSize is the default number of entries requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxPages caps the number of pages fetched by one search (default 1000).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Providers lists the data assembly centers queried when a search names
	// no provider of its own. Empty means a single unfiltered search.
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty" mapstructure:"providers"`

	// SkipUnserved makes a multi-provider search skip providers that answer
	// 404 for the dataset instead of failing.
	SkipUnserved bool `json:"skip_unserved" yaml:"skip_unserved" mapstructure:"skip_unserved"`
}

// ServeConfig holds settings for the HTTP surface.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RequestTimeout bounds one /granules request, including every page fetch.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// AllowedOrigins enables CORS for these origins. Empty disables CORS.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json" (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Serve  ServeConfig  `json:"serve" yaml:"serve" mapstructure:"serve"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
