package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/licorgest/licorgest/internal/server"
)

var (
	reportFrom string
	reportTo   string
)

func init() {
	reportSalesCmd.Flags().StringVar(&reportFrom, "desde", "", "start date (YYYY-MM-DD, inclusive)")
	reportSalesCmd.Flags().StringVar(&reportTo, "hasta", "", "end date (YYYY-MM-DD, inclusive)")
}

// licorgest report:sales — export a sales CSV from the command line.
var reportSalesCmd = &cobra.Command{
	Use:   "report:sales",
	Short: "Generate a sales CSV for a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Build()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		r, err := app.Reports.GenerateSales(ctx, reportFrom, reportTo)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %s (%d bytes)\n", r.Path, r.SizeBytes)
		return nil
	},
}

// licorgest report:stock — export the current stock listing.
var reportStockCmd = &cobra.Command{
	Use:   "report:stock",
	Short: "Generate a stock listing CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Build()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		r, err := app.Reports.GenerateStock(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %s (%d bytes)\n", r.Path, r.SizeBytes)
		return nil
	},
}

// licorgest report:list — show the ledger.
var reportListCmd = &cobra.Command{
	Use:   "report:list",
	Short: "List generated reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Build()
		if err != nil {
			return err
		}

		ledger, err := app.Reports.List()
		if err != nil {
			return err
		}
		if len(ledger) == 0 {
			fmt.Println("No reports generated yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPATH\tBYTES\tGENERATED")
		for _, r := range ledger {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				r.ID, r.Type, r.Path, r.SizeBytes, r.GeneratedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}
