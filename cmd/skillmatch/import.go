package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/skillmatch/internal/catalog"
	"github.com/marcus/skillmatch/internal/db"
)

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog",
	Short: "Import a job catalog file into the database",
	Long:  "Validate a job catalog file against its schema and upsert every entry into the database. Entries are keyed by their catalog ID, so re-importing an updated file changes rows in place instead of duplicating them.",
	RunE:  runImportCatalog,
}

var (
	importCatalogPath string
	importDatabaseURL string
)

func init() {
	importCatalogCmd.Flags().StringVarP(&importCatalogPath, "catalog", "c", "", "Path to job catalog JSON file (required)")
	importCatalogCmd.Flags().StringVar(&importDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	importCatalogCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(importCatalogCmd)
}

func runImportCatalog(_ *cobra.Command, _ []string) error {
	databaseURL := importDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	entries, err := catalog.LoadPostings(importCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	for _, entry := range entries {
		input := &db.PostingCreateInput{
			ExternalID:   entry.ID,
			Title:        entry.Title,
			Company:      entry.Company,
			Location:     entry.Location,
			URL:          entry.URL,
			Description:  entry.Description,
			SkillWeights: entry.Skills.Weighted(),
			Source:       db.PostingSourceCatalog,
		}
		if _, err := database.UpsertPosting(ctx, input); err != nil {
			return fmt.Errorf("failed to import job %q: %w", entry.ID, err)
		}
	}

	fmt.Fprintf(os.Stdout, "Imported %d postings from %s\n", len(entries), importCatalogPath)
	return nil
}
