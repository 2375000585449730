package skills

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexible_DecodesArray(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`["Python", "SQL", "golang"]`), &f))

	assert.Equal(t, WeightedSkillSet{"python": 1.0, "sql": 1.0, "go": 1.0}, f.Weighted())
}

func TestFlexible_DecodesObject(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`{"python": 2.0, "sql": 1.0}`), &f))

	assert.Equal(t, WeightedSkillSet{"python": 2.0, "sql": 1.0}, f.Weighted())
}

func TestFlexible_DecodesDelimitedString(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`"Python, SQL; Docker"`), &f))

	assert.Equal(t, WeightedSkillSet{"python": 1.0, "sql": 1.0, "docker": 1.0}, f.Weighted())
}

func TestFlexible_NullDecodesEmpty(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))

	assert.Empty(t, f.Weighted())
	assert.NotNil(t, f.Weighted())
}

func TestFlexible_ObjectWithMalformedWeights(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`{"python": "expert", "sql": -1}`), &f))

	// Non-numeric weight falls back to default, negative is dropped.
	assert.Equal(t, WeightedSkillSet{"python": 1.0}, f.Weighted())
}

func TestFlexible_ArraySkipsNonStringEntries(t *testing.T) {
	var f Flexible
	require.NoError(t, json.Unmarshal([]byte(`["Python", 3, null, "SQL"]`), &f))

	assert.Equal(t, WeightedSkillSet{"python": 1.0, "sql": 1.0}, f.Weighted())
}

func TestFlexible_RejectsOtherShapes(t *testing.T) {
	var f Flexible
	err := json.Unmarshal([]byte(`42`), &f)

	assert.Error(t, err)
}

func TestFlexible_MarshalWritesWeightedObject(t *testing.T) {
	f := NewFlexible(WeightedSkillSet{"Go": 2.0, "sql": 1.0})

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"go": 2.0, "sql": 1.0}`, string(data))
}

func TestFlexible_ZeroValueMarshalsEmptyObject(t *testing.T) {
	data, err := json.Marshal(Flexible{})
	require.NoError(t, err)

	assert.JSONEq(t, `{}`, string(data))
}
