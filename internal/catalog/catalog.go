package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcus/skillmatch/internal/assess"
	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
)

// Schema files shipped at the repository root.
const (
	JobCatalogSchema   = "schemas/job_catalog.schema.json"
	QuestionBankSchema = "schemas/question_bank.schema.json"
)

// PostingEntry is one job in a catalog file. Skills accepts both the
// legacy flat-list shape and the weighted mapping.
type PostingEntry struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Location    string          `json:"location,omitempty"`
	URL         string          `json:"url,omitempty"`
	Description string          `json:"description,omitempty"`
	Skills      skills.Flexible `json:"skills"`
}

// Posting converts the entry to the scorer's view of a job.
func (e PostingEntry) Posting() recommend.Posting {
	return recommend.Posting{ID: e.ID, Skills: e.Skills.Weighted()}
}

type jobCatalogFile struct {
	Jobs []PostingEntry `json:"jobs"`
}

// LoadPostings reads a job catalog file, validates it against the job
// catalog schema, and decodes the entries. Duplicate job IDs are an
// authoring error and fail the load.
func LoadPostings(path string) ([]PostingEntry, error) {
	schemaPath := ResolveSchemaPath(JobCatalogSchema)
	if schemaPath == "" {
		return nil, &SchemaLoadError{Path: JobCatalogSchema, Message: "schema file not found"}
	}
	if err := ValidateFile(schemaPath, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file jobCatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	seen := make(map[string]bool, len(file.Jobs))
	for _, entry := range file.Jobs {
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate job id %q in catalog", entry.ID)
		}
		seen[entry.ID] = true
	}

	return file.Jobs, nil
}

type questionBankFile struct {
	Questions []assess.Question `json:"questions"`
}

// LoadQuestionBank reads a question bank file, validates it against the
// question bank schema, and decodes the questions. Skill names are
// normalized on the way in. Cross-field rules the schema cannot express
// (correct_index in range, duplicate IDs) are checked after decoding.
func LoadQuestionBank(path string) ([]assess.Question, error) {
	schemaPath := ResolveSchemaPath(QuestionBankSchema)
	if schemaPath == "" {
		return nil, &SchemaLoadError{Path: QuestionBankSchema, Message: "schema file not found"}
	}
	if err := ValidateFile(schemaPath, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var file questionBankFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	seen := make(map[string]bool, len(file.Questions))
	for i := range file.Questions {
		q := &file.Questions[i]

		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q in bank", q.ID)
		}
		seen[q.ID] = true

		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			return nil, fmt.Errorf("question %q: correct_index %d out of range for %d choices",
				q.ID, q.CorrectIndex, len(q.Choices))
		}

		q.Skill = skills.Normalize(q.Skill)
		if q.Skill == "" {
			return nil, fmt.Errorf("question %q: skill name is empty after normalization", q.ID)
		}
	}

	return file.Questions, nil
}
