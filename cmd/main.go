package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "alphavantage-pipeline",
	Short: "A CLI for managing the market data pipeline services",
	Long:  `The market data pipeline ingests stocks, prices, news and corporate events from Alpha Vantage and serves them over a read API.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
