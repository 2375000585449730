// Package main provides the skillmatch command line interface and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillmatch",
	Short: "Job matching and upskilling platform",
	Long:  "Skillmatch ranks job postings against user skill profiles, turns market demand into upskilling paths, and verifies skills through assessments, via REST API and CLI.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
