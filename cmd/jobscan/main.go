// Package main provides the entry point for the job scanner CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobscan",
	Short: "Job posting fact extraction",
	Long:  "Jobscan extracts structured facts (company, title, skills with years of experience, keywords) from job posting text, using a remote AI extractor with a deterministic local fallback.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
