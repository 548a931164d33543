package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/granule-search/internal/catalog"
	"github.com/pdiddy/granule-search/internal/httputil"
	"github.com/pdiddy/granule-search/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a dataset for granules and list their download links",
	Long: `Search queries the granule search service for every file of a dataset in a
time window, following pagination to the end. Records for the same file from
different providers are merged, so each file is listed once with all of its
download links.

Use --providers (or search.providers in the config file) to query several
providers in turn. With --output the request and the merged catalog are also
saved as YAML, which "show" can render again later.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("dataset", "", "dataset identifier (required)")
	searchCmd.Flags().String("start", "", "start of the time window (RFC 3339 or YYYY-MM-DD, required)")
	searchCmd.Flags().String("end", "", "end of the time window (default now)")
	searchCmd.Flags().String("bbox", "", "bounding box lonMin,latMin,lonMax,latMax")
	searchCmd.Flags().String("provider", "", "restrict to one provider (e.g. JPL, NCEI)")
	searchCmd.Flags().StringSlice("providers", nil, "search each provider in turn and merge the results")
	searchCmd.Flags().String("protocol", "", "only include links of this protocol (e.g. FTP, HTTPS)")
	searchCmd.Flags().Int("page-size", 0, "entries requested per page (default search.page_size)")
	searchCmd.Flags().Int("max-pages", 0, "page cap per provider (default search.max_pages)")
	searchCmd.Flags().Bool("skip-unserved", false, "skip providers that do not serve the dataset")
	searchCmd.Flags().Bool("json", false, "output the catalog as JSON")
	searchCmd.Flags().Bool("providers-summary", false, "print link counts per provider after the results")
	searchCmd.Flags().String("output", "", "also save the request and catalog to this YAML file")
	_ = searchCmd.MarkFlagRequired("dataset")
	_ = searchCmd.MarkFlagRequired("start")

	_ = viper.BindPFlag("search.max_pages", searchCmd.Flags().Lookup("max-pages"))
	_ = viper.BindPFlag("search.skip_unserved", searchCmd.Flags().Lookup("skip-unserved"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := zerolog.Ctx(ctx)

	flags := cmd.Flags()
	dataset, _ := flags.GetString("dataset")
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")
	bbox, _ := flags.GetString("bbox")
	provider, _ := flags.GetString("provider")
	providers, _ := flags.GetStringSlice("providers")
	protocol, _ := flags.GetString("protocol")
	pageSize, _ := flags.GetInt("page-size")
	asJSON, _ := flags.GetBool("json")
	summary, _ := flags.GetBool("providers-summary")
	output, _ := flags.GetString("output")

	if pageSize == 0 {
		pageSize = cfg.Search.PageSize
	}
	req, err := search.ParseRequest(search.RequestParams{
		Dataset:  dataset,
		Start:    start,
		End:      end,
		BBox:     bbox,
		Provider: provider,
		Protocol: protocol,
		PageSize: pageSize,
	}, time.Now())
	if err != nil {
		return err
	}

	switch {
	case req.Provider != "":
		providers = nil
	case len(providers) == 0:
		providers = cfg.Search.Providers
	}

	client := httputil.NewClient(cfg.Search.HTTPConfig, cfg.Search.MaxRetries)
	res, err := search.SearchProviders(ctx, client, req, providers, search.OptionsFromConfig(cfg.Search, nil))
	if err != nil {
		return err
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(os.Stderr, "Skipped provider %s: dataset not served\n", p)
	}

	if output != "" {
		f := catalog.NewFile(req, res.Catalog)
		f.Summary.SearchID = res.SearchID
		f.Summary.Skipped = res.Skipped
		if err := catalog.WriteFile(output, f); err != nil {
			return err
		}
		log.Info().Str("path", output).Int("granules", res.Catalog.Len()).Msg("catalog saved")
	}

	return render(cmd.OutOrStdout(), res.Catalog, asJSON, summary)
}

func render(w io.Writer, c *catalog.Catalog, asJSON, summary bool) error {
	if asJSON {
		if err := catalog.FormatJSON(c, w); err != nil {
			return err
		}
	} else {
		catalog.FormatTable(c, w)
	}
	if summary {
		fmt.Fprintln(w)
		catalog.FormatProviders(c, w)
	}
	return nil
}
