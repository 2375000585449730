package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/skillmatch/internal/catalog"
	"github.com/marcus/skillmatch/internal/db"
)

var loadBankCmd = &cobra.Command{
	Use:   "load-bank",
	Short: "Replace the stored question bank from a bank file",
	Long:  "Validate a question bank file against its schema and replace the stored bank wholesale. Pending attempts keep grading against the questions they were started with.",
	RunE:  runLoadBank,
}

var (
	bankPath        string
	bankDatabaseURL string
)

func init() {
	loadBankCmd.Flags().StringVarP(&bankPath, "bank", "b", "", "Path to question bank JSON file (required)")
	loadBankCmd.Flags().StringVar(&bankDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	loadBankCmd.MarkFlagRequired("bank")

	rootCmd.AddCommand(loadBankCmd)
}

func runLoadBank(_ *cobra.Command, _ []string) error {
	databaseURL := bankDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	questions, err := catalog.LoadQuestionBank(bankPath)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}

	skillSet := make(map[string]int)
	for _, q := range questions {
		skillSet[q.Skill]++
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	count, err := database.ReplaceQuestionBank(ctx, questions)
	if err != nil {
		return fmt.Errorf("failed to replace question bank: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Loaded %d questions covering %d skills from %s\n", count, len(skillSet), bankPath)
	return nil
}
