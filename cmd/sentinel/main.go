package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Local .env files are optional; deployments use real env vars.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "sentinel",
		Short:   "Sentinel — HSE incident, audit, policy, and ESG report generator",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newReportCmd(),
		newWizardCmd(),
		newStatsCmd(),
		newHistoryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
