package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest job postings from URLs or a text file",
	Long:  "Fetch job posting pages, extract their text and skill mentions, and upsert them into the database. Re-ingesting an unchanged page updates its existing row. With --dry-run the extracted postings are printed as JSON instead of stored.",
	RunE:  runIngest,
}

var (
	ingestURLs        []string
	ingestTextFile    string
	ingestUseBrowser  bool
	ingestTimeout     int
	ingestDryRun      bool
	ingestDatabaseURL string
)

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestURLs, "url", "u", nil, "Posting URL to ingest (repeatable)")
	ingestCmd.Flags().StringVarP(&ingestTextFile, "text-file", "t", "", "Path to a text file containing a posting description")
	ingestCmd.Flags().BoolVar(&ingestUseBrowser, "browser", false, "Force headless browser rendering for client-rendered boards")
	ingestCmd.Flags().IntVar(&ingestTimeout, "timeout", 30, "Fetch timeout in seconds")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Print extracted postings as JSON without writing to the database")
	ingestCmd.Flags().StringVar(&ingestDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	if len(ingestURLs) == 0 && ingestTextFile == "" {
		return fmt.Errorf("either --url or --text-file must be provided")
	}
	if len(ingestURLs) > 0 && ingestTextFile != "" {
		return fmt.Errorf("--url and --text-file are mutually exclusive; provide only one")
	}

	var databaseURL string
	if !ingestDryRun {
		databaseURL = ingestDatabaseURL
		if databaseURL == "" {
			databaseURL = os.Getenv("DATABASE_URL")
		}
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required (or pass --dry-run)")
		}
	}

	ing := ingest.New(zap.NewNop())
	ing.UseBrowser = ingestUseBrowser
	if ingestTimeout > 0 {
		ing.FetchOptions.Timeout = time.Duration(ingestTimeout) * time.Second
	}

	ctx := context.Background()

	var postings []*ingest.Posting
	if ingestTextFile != "" {
		posting, err := ing.FromFile(ingestTextFile)
		if err != nil {
			return fmt.Errorf("failed to ingest from file: %w", err)
		}
		postings = append(postings, posting)
	} else {
		fetched, errs := ing.FromURLs(ctx, ingestURLs)
		for idx, err := range errs {
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				continue
			}
			postings = append(postings, fetched[idx])
		}
	}

	if len(postings) == 0 {
		return fmt.Errorf("no postings could be ingested")
	}

	if ingestDryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(postings)
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	stored := 0
	for _, posting := range postings {
		row, err := database.UpsertPosting(ctx, importedPostingInput(posting))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to store %q: %v\n", posting.URL, err)
			continue
		}
		stored++
		fmt.Fprintf(os.Stdout, "Stored %s - %s (%s)\n", row.Title, row.Company, row.ID)
	}

	if stored == 0 {
		return fmt.Errorf("no postings could be stored")
	}
	fmt.Fprintf(os.Stdout, "Ingested %d of %d postings\n", stored, len(postings))
	return nil
}

// importedPostingInput maps an extracted posting to a storable row, keyed
// by content hash so repeat ingests update in place.
func importedPostingInput(p *ingest.Posting) *db.PostingCreateInput {
	title := p.Title
	if title == "" {
		title = "Untitled posting"
	}
	company := p.Company
	if company == "" {
		company = "Unknown company"
		if parsed, err := url.Parse(p.URL); err == nil && parsed.Host != "" {
			company = parsed.Host
		}
	}

	return &db.PostingCreateInput{
		ExternalID:  p.Hash,
		Title:       title,
		Company:     company,
		URL:         p.URL,
		Description: p.Text,
		SkillsText:  strings.Join(p.Skills, ", "),
		Source:      db.PostingSourceImport,
	}
}
