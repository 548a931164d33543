package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/granule-search/internal/search"
	"github.com/pdiddy/granule-search/pkg/types"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultUserAgent      = "granule-search/0.1"
	defaultPageSize       = 100
	defaultAddr           = ":8080"
	defaultRequestTimeout = 5 * time.Minute

	// configName is the config file base name looked up in the working
	// directory and in ~/.config/granule-search.
	configName = "granule-search"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("GRANULE_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// setDefaults registers every key so that environment variables are seen by
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.timeout", defaultTimeout)
	v.SetDefault("search.user_agent", defaultUserAgent)
	v.SetDefault("search.page_size", defaultPageSize)
	v.SetDefault("search.max_pages", search.DefaultMaxPages)
	v.SetDefault("search.max_retries", 0)
	v.SetDefault("search.providers", []string{})
	v.SetDefault("search.skip_unserved", false)

	v.SetDefault("serve.addr", defaultAddr)
	v.SetDefault("serve.request_timeout", defaultRequestTimeout)
	v.SetDefault("serve.allowed_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// loadConfig decodes the merged flags, environment, file and defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Search.Endpoint == "" {
		return cfg, fmt.Errorf("no search endpoint configured: set search.endpoint in granule-search.yaml, GRANULE_SEARCH_SEARCH_ENDPOINT, or --endpoint")
	}
	return cfg, nil
}
