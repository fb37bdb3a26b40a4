package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "licorgest",
	Short: "Licorgest — liquor store point of sale",
	Long:  "Licorgest is the point-of-sale front end for the liquor store inventory API: catalog, cart, checkout, reports.",
}

func init() {
	// Server
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Reports
	rootCmd.AddCommand(reportSalesCmd)
	rootCmd.AddCommand(reportStockCmd)
	rootCmd.AddCommand(reportListCmd)
}
