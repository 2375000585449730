package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/skillmatch/internal/skills"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPostings_ValidCatalog(t *testing.T) {
	path := writeTempJSON(t, `{
		"jobs": [
			{
				"id": "job_data",
				"title": "Data Engineer",
				"company": "Acme",
				"skills": {"python": 2.0, "sql": 1.0}
			},
			{
				"id": "job_legacy",
				"title": "Backend Engineer",
				"company": "Acme",
				"skills": ["Go", "Docker"]
			},
			{
				"id": "job_delimited",
				"title": "Platform Engineer",
				"company": "Acme",
				"skills": "Kubernetes, Terraform"
			}
		]
	}`)

	entries, err := LoadPostings(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, skills.WeightedSkillSet{"python": 2.0, "sql": 1.0}, entries[0].Skills.Weighted())
	assert.Equal(t, skills.WeightedSkillSet{"go": 1.0, "docker": 1.0}, entries[1].Skills.Weighted())
	assert.Equal(t, skills.WeightedSkillSet{"kubernetes": 1.0, "terraform": 1.0}, entries[2].Skills.Weighted())

	posting := entries[0].Posting()
	assert.Equal(t, "job_data", posting.ID)
	assert.Equal(t, skills.WeightedSkillSet{"python": 2.0, "sql": 1.0}, posting.Skills)
}

func TestLoadPostings_RejectsMissingRequiredFields(t *testing.T) {
	path := writeTempJSON(t, `{
		"jobs": [
			{"id": "job_a", "company": "Acme", "skills": ["go"]}
		]
	}`)

	_, err := LoadPostings(path)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
}

func TestLoadPostings_RejectsDuplicateIDs(t *testing.T) {
	path := writeTempJSON(t, `{
		"jobs": [
			{"id": "job_a", "title": "A", "company": "Acme", "skills": ["go"]},
			{"id": "job_a", "title": "B", "company": "Acme", "skills": ["rust"]}
		]
	}`)

	_, err := LoadPostings(path)
	assert.ErrorContains(t, err, "duplicate job id")
}

func TestLoadPostings_FileNotFound(t *testing.T) {
	_, err := LoadPostings(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadQuestionBank_Valid(t *testing.T) {
	path := writeTempJSON(t, `{
		"questions": [
			{
				"id": "q_go_1",
				"skill": "Golang",
				"prompt": "Which keyword starts a goroutine?",
				"choices": ["go", "async", "spawn", "thread"],
				"correct_index": 0
			}
		]
	}`)

	questions, err := LoadQuestionBank(path)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	// The skill name is normalized during load.
	assert.Equal(t, "go", questions[0].Skill)
	assert.Equal(t, 0, questions[0].CorrectIndex)
}

func TestLoadQuestionBank_CorrectIndexOutOfRange(t *testing.T) {
	path := writeTempJSON(t, `{
		"questions": [
			{
				"id": "q_bad",
				"skill": "go",
				"prompt": "Pick one",
				"choices": ["a", "b"],
				"correct_index": 2
			}
		]
	}`)

	_, err := LoadQuestionBank(path)
	assert.ErrorContains(t, err, "out of range")
}

func TestLoadQuestionBank_DuplicateID(t *testing.T) {
	path := writeTempJSON(t, `{
		"questions": [
			{"id": "q_1", "skill": "go", "prompt": "One", "choices": ["a", "b"], "correct_index": 0},
			{"id": "q_1", "skill": "go", "prompt": "Two", "choices": ["a", "b"], "correct_index": 1}
		]
	}`)

	_, err := LoadQuestionBank(path)
	assert.ErrorContains(t, err, "duplicate question id")
}

func TestLoadQuestionBank_RejectsSingleChoice(t *testing.T) {
	path := writeTempJSON(t, `{
		"questions": [
			{"id": "q_1", "skill": "go", "prompt": "One", "choices": ["a"], "correct_index": 0}
		]
	}`)

	_, err := LoadQuestionBank(path)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestResolveSchemaPath_FindsRepoSchemas(t *testing.T) {
	// Tests run from the package directory; the schemas live two levels up.
	assert.NotEmpty(t, ResolveSchemaPath(JobCatalogSchema))
	assert.NotEmpty(t, ResolveSchemaPath(QuestionBankSchema))
	assert.Empty(t, ResolveSchemaPath("schemas/no_such.schema.json"))
}

func TestValidateString_ValidDocument(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateString(schema, `{"name": "ok"}`))
}

func TestValidateString_InvalidDocument(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	err := ValidateString(schema, `{"name": 42}`)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "name", ve.Errors[0].Field)
}

func TestValidateString_BadSchema(t *testing.T) {
	err := ValidateString(`{not json`, `{}`)

	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
}
