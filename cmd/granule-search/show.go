package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/granule-search/internal/catalog"
)

var showCmd = &cobra.Command{
	Use:   "show <catalog.yaml>",
	Short: "Render a catalog saved with search --output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := catalog.ReadFile(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		summary, _ := cmd.Flags().GetBool("providers-summary")

		w := cmd.OutOrStdout()
		if !asJSON {
			fmt.Fprintf(w, "Dataset %s, %s to %s (saved %s)\n\n",
				f.Request.DatasetID,
				f.Request.TimeStart.Format(time.RFC3339),
				f.Request.TimeEnd.Format(time.RFC3339),
				f.Summary.Timestamp.Format("2006-01-02 15:04"))
		}
		return render(w, f.Catalog(), asJSON, summary)
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "output the catalog as JSON")
	showCmd.Flags().Bool("providers-summary", false, "print link counts per provider after the results")

	rootCmd.AddCommand(showCmd)
}
