// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the granule-search CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/granule-search/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the granule-search CLI.
var rootCmd = &cobra.Command{
	Use:   "granule-search",
	Short: "Find sea surface temperature granules across data providers",
	Long: `granule-search queries an OpenSearch granule-discovery service for the
files of a dataset within a time window and optional bounding box. It pages
through every result, merges the records each provider reports for the same
file, and prints one entry per file with all of its download links.

Use "search" for a one-off query and "serve" to expose the same search over
HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(logger.Options{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		cmd.SetContext(log.WithContext(cmd.Context()))
		if f := viper.ConfigFileUsed(); f != "" {
			log.Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./"+configName+".yaml or ~/.config/"+configName+"/"+configName+".yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "granule search URL (overrides search.endpoint)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("search.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
