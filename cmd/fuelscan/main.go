package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fuelscan",
		Short: "Read Indonesian fuel receipts from the command line",
		Long: `fuelscan extracts volume, price per liter, total, fuel type, date and
station code from SPBU receipts, either from already recognized text or
from a photo run through the configured OCR engine.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(ParseCmd())
	rootCmd.AddCommand(ScanCmd())
	rootCmd.AddCommand(ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
