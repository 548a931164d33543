package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/granule-search/internal/httputil"
	"github.com/pdiddy/granule-search/internal/obs"
	"github.com/pdiddy/granule-search/internal/search"
	"github.com/pdiddy/granule-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve granule searches over HTTP",
	Long: `Serve exposes GET /granules with the same parameters as the search command
(dataset, start, end, bbox, provider, protocol, page_size, and repeated
providers) and returns the merged catalog as JSON. GET /healthz reports
liveness and GET /metrics serves Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default serve.addr)")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	srv := server.New(server.Config{
		Getter:         httputil.NewClient(cfg.Search.HTTPConfig, cfg.Search.MaxRetries),
		Options:        search.OptionsFromConfig(cfg.Search, metrics),
		Providers:      cfg.Search.Providers,
		PageSize:       cfg.Search.PageSize,
		RequestTimeout: cfg.Serve.RequestTimeout,
		AllowedOrigins: cfg.Serve.AllowedOrigins,
		Metrics:        metrics,
		Logger:         *zerolog.Ctx(ctx),
	})
	return srv.ListenAndServe(ctx, cfg.Serve.Addr)
}
