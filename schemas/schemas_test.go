package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/skillmatch/internal/catalog"
)

var schemaFiles = []string{
	"job_catalog.schema.json",
	"question_bank.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_DeclareDraft07(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj))

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schemaObj["$schema"])
			assert.Contains(t, schemaObj, "properties")
		})
	}
}

func TestJobCatalogSchema_AcceptsBothSkillShapes(t *testing.T) {
	schema, err := os.ReadFile("job_catalog.schema.json")
	require.NoError(t, err)

	valid := `{
		"jobs": [
			{"id": "a", "title": "T", "company": "C", "skills": ["go"]},
			{"id": "b", "title": "T", "company": "C", "skills": {"go": 2.0}},
			{"id": "c", "title": "T", "company": "C", "skills": "go, docker"}
		]
	}`
	assert.NoError(t, catalog.ValidateString(string(schema), valid))
}

func TestJobCatalogSchema_RejectsBadShapes(t *testing.T) {
	schema, err := os.ReadFile("job_catalog.schema.json")
	require.NoError(t, err)

	cases := map[string]string{
		"skills as number":  `{"jobs": [{"id": "a", "title": "T", "company": "C", "skills": 42}]}`,
		"missing title":     `{"jobs": [{"id": "a", "company": "C", "skills": ["go"]}]}`,
		"empty id":          `{"jobs": [{"id": "", "title": "T", "company": "C", "skills": ["go"]}]}`,
		"unknown field":     `{"jobs": [{"id": "a", "title": "T", "company": "C", "skills": ["go"], "salary": 1}]}`,
		"jobs not an array": `{"jobs": {}}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, catalog.ValidateString(string(schema), doc))
		})
	}
}

func TestQuestionBankSchema_RejectsBadShapes(t *testing.T) {
	schema, err := os.ReadFile("question_bank.schema.json")
	require.NoError(t, err)

	cases := map[string]string{
		"too few choices": `{"questions": [{"id": "q", "skill": "go", "prompt": "P", "choices": ["a"], "correct_index": 0}]}`,
		"negative index":  `{"questions": [{"id": "q", "skill": "go", "prompt": "P", "choices": ["a", "b"], "correct_index": -1}]}`,
		"missing prompt":  `{"questions": [{"id": "q", "skill": "go", "choices": ["a", "b"], "correct_index": 0}]}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, catalog.ValidateString(string(schema), doc))
		})
	}
}
