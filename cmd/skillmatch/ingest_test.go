package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/ingest"
)

func TestIngestCommand_MissingSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "ingest")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "either --url or --text-file must be provided")
}

func TestIngestCommand_BothSourcesProvided(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "ingest",
		"--url", "https://example.com/job",
		"--text-file", "posting.txt")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "mutually exclusive")
}

func TestIngestCommand_MissingDatabaseURL(t *testing.T) {
	binaryPath := getBinaryPath(t)

	// The database URL is resolved before any page is fetched, so this
	// fails fast without network access.
	cmd := exec.Command(binaryPath, "ingest", "--url", "https://example.com/job")
	cmd.Env = scrubbedEnv()
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "DATABASE_URL")
}

func TestIngestCommand_DryRunFromFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	path := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(path, []byte("Looking for Golang and Terraform experience."), 0o644))

	cmd := exec.Command(binaryPath, "ingest", "--text-file", path, "--dry-run")
	cmd.Env = scrubbedEnv()
	output, err := cmd.Output()
	require.NoError(t, err)

	var postings []*ingest.Posting
	require.NoError(t, json.Unmarshal(output, &postings))
	require.Len(t, postings, 1)
	assert.Contains(t, postings[0].Skills, "go")
	assert.Contains(t, postings[0].Skills, "terraform")
	assert.NotEmpty(t, postings[0].Hash)
}

func TestIngestCommand_MissingTextFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "ingest",
		"--text-file", filepath.Join(t.TempDir(), "absent.txt"),
		"--dry-run")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to ingest from file")
}

func TestImportedPostingInput_Fallbacks(t *testing.T) {
	input := importedPostingInput(&ingest.Posting{
		URL:  "https://boards.example.com/senior-go",
		Text: "body",
		Hash: "abc123",
	})

	assert.Equal(t, "Untitled posting", input.Title)
	assert.Equal(t, "boards.example.com", input.Company)
	assert.Equal(t, "abc123", input.ExternalID)
	assert.Equal(t, db.PostingSourceImport, input.Source)
}

func TestImportedPostingInput_KeepsExtractedFields(t *testing.T) {
	input := importedPostingInput(&ingest.Posting{
		URL:     "https://example.com/jobs/1",
		Title:   "Platform Engineer",
		Company: "Acme",
		Text:    "Kubernetes and Go.",
		Skills:  []string{"go", "kubernetes"},
		Hash:    "feed",
	})

	assert.Equal(t, "Platform Engineer", input.Title)
	assert.Equal(t, "Acme", input.Company)
	assert.Equal(t, "go, kubernetes", input.SkillsText)
}
