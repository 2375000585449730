package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/skillmatch/internal/catalog"
	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank catalog jobs against a skill profile",
	Long:  "Rank every job in a catalog file against a skill profile, best match first. The profile is given inline with --skills or loaded from a stored user with --user.",
	RunE:  runRank,
}

var (
	rankCatalogPath string
	rankSkills      []string
	rankUserID      string
	rankDatabaseURL string
	rankTop         int
	rankMinScore    float64
	rankJSON        bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankCatalogPath, "catalog", "c", "", "Path to job catalog JSON file (required)")
	rankCmd.Flags().StringSliceVarP(&rankSkills, "skills", "s", nil, "Skill profile, comma separated (mutually exclusive with --user)")
	rankCmd.Flags().StringVarP(&rankUserID, "user", "u", "", "Stored user ID to load the profile from (mutually exclusive with --skills)")
	rankCmd.Flags().StringVar(&rankDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rankCmd.Flags().IntVar(&rankTop, "top", 10, "Show only the best N matches (0 for all)")
	rankCmd.Flags().Float64Var(&rankMinScore, "min-score", 0, "Drop matches scoring below this threshold")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Emit JSON instead of text output")

	rankCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(rankCmd)
}

func runRank(_ *cobra.Command, _ []string) error {
	// Validate mutually exclusive flags
	if len(rankSkills) == 0 && rankUserID == "" {
		return fmt.Errorf("either --skills or --user must be provided")
	}
	if len(rankSkills) > 0 && rankUserID != "" {
		return fmt.Errorf("--skills and --user are mutually exclusive; provide only one")
	}

	entries, err := catalog.LoadPostings(rankCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var profile skills.SkillSet
	if rankUserID != "" {
		profile, err = loadStoredProfile(rankUserID)
		if err != nil {
			return err
		}
	} else {
		profile = skills.NewSet(rankSkills...)
	}

	postings := make([]recommend.Posting, 0, len(entries))
	byID := make(map[string]catalog.PostingEntry, len(entries))
	for _, entry := range entries {
		postings = append(postings, entry.Posting())
		byID[entry.ID] = entry
	}

	matches := recommend.Rank(profile, postings)

	if rankMinScore > 0 {
		kept := matches[:0]
		for _, match := range matches {
			if match.Score >= rankMinScore {
				kept = append(kept, match)
			}
		}
		matches = kept
	}
	if rankTop > 0 && len(matches) > rankTop {
		matches = matches[:rankTop]
	}

	if rankJSON {
		return json.NewEncoder(os.Stdout).Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches")
		return nil
	}
	for i, match := range matches {
		entry := byID[match.JobID]
		fmt.Fprintf(os.Stdout, "%2d. %.3f  %s - %s (%s)\n", i+1, match.Score, entry.Title, entry.Company, match.JobID)
		if match.Notes != "" {
			fmt.Fprintf(os.Stdout, "           %s\n", match.Notes)
		}
	}
	return nil
}

// loadStoredProfile loads the combined claimed and verified skills of a
// stored user.
func loadStoredProfile(idStr string) (skills.SkillSet, error) {
	databaseURL := rankDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required with --user")
	}

	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id format: %w", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	user, err := database.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	return database.SkillSetForUser(ctx, userID)
}
