package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcus/skillmatch/internal/skills"
)

func TestSimilarity_PartialOverlap(t *testing.T) {
	user := skills.NewSet("python", "sql")
	job := skills.NewSet("python", "sql", "docker")

	// Intersection 2, union 3.
	assert.InDelta(t, 2.0/3.0, Similarity(user, job), 0.001)
}

func TestSimilarity_Identical(t *testing.T) {
	user := skills.NewSet("go", "postgresql")
	job := skills.NewSet("go", "postgresql")

	assert.InDelta(t, 1.0, Similarity(user, job), 0.001)
}

func TestSimilarity_Disjoint(t *testing.T) {
	user := skills.NewSet("cobol")
	job := skills.NewSet("go", "rust")

	assert.Equal(t, 0.0, Similarity(user, job))
}

func TestSimilarity_BothEmpty(t *testing.T) {
	// Empty union is defined as zero similarity, not an error.
	assert.Equal(t, 0.0, Similarity(skills.SkillSet{}, skills.SkillSet{}))
}

func TestSimilarity_NormalizesBothSides(t *testing.T) {
	user := skills.SkillSet{"Golang": {}}
	job := skills.SkillSet{"  GO  ": {}}

	assert.InDelta(t, 1.0, Similarity(user, job), 0.001)
}

func TestCoverage_PartialMatch(t *testing.T) {
	user := skills.NewSet("python", "sql")
	required := skills.WeightedSkillSet{"python": 2.0, "sql": 1.0, "docker": 1.0}

	// Matched weight 3.0 out of 4.0 total.
	assert.InDelta(t, 0.75, Coverage(user, required), 0.001)
}

func TestCoverage_FullMatch(t *testing.T) {
	user := skills.NewSet("python", "docker")
	required := skills.WeightedSkillSet{"python": 2.0, "docker": 0.5}

	assert.InDelta(t, 1.0, Coverage(user, required), 0.001)
}

func TestCoverage_NoRequirements(t *testing.T) {
	user := skills.NewSet("python")

	assert.Equal(t, 0.0, Coverage(user, skills.WeightedSkillSet{}))
}

func TestCoverage_AllWeightsDropped(t *testing.T) {
	// Requirements that sanitize away leave zero total weight.
	user := skills.NewSet("python")
	required := skills.WeightedSkillSet{"python": -1.0, "sql": 0.0}

	assert.Equal(t, 0.0, Coverage(user, required))
}

func TestScore_WorkedExample(t *testing.T) {
	user := skills.NewSet("python", "sql")
	required := skills.WeightedSkillSet{"python": 2.0, "sql": 1.0, "docker": 1.0}

	// similarity = 2/3, coverage = 3/4: 0.4*(2/3) + 0.6*0.75 ≈ 0.7167
	expected := 0.4*(2.0/3.0) + 0.6*0.75
	assert.InDelta(t, expected, Score(user, required), 0.001)
}

func TestScore_UniformWeights(t *testing.T) {
	user := skills.NewSet("python", "sql")
	required := skills.WeightedSkillSet{"python": 1.0, "sql": 1.0, "docker": 1.0}

	// similarity = coverage = 2/3, so the blend is 2/3 as well.
	assert.InDelta(t, 2.0/3.0, Score(user, required), 0.001)
}

func TestScore_PerfectMatch(t *testing.T) {
	user := skills.NewSet("go", "postgresql", "docker")
	required := skills.WeightedSkillSet{"go": 3.0, "postgresql": 1.0, "docker": 0.5}

	assert.InDelta(t, 1.0, Score(user, required), 0.001)
}

func TestScore_EmptyUserSkills(t *testing.T) {
	required := skills.WeightedSkillSet{"python": 1.0}

	assert.Equal(t, 0.0, Score(skills.SkillSet{}, required))
	assert.Equal(t, 0.0, Score(nil, required))
}

func TestScore_EmptyRequirements(t *testing.T) {
	user := skills.NewSet("python")

	assert.Equal(t, 0.0, Score(user, skills.WeightedSkillSet{}))
	assert.Equal(t, 0.0, Score(user, nil))
}

func TestScore_BothEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Score(skills.SkillSet{}, skills.WeightedSkillSet{}))
}

func TestScore_LegacyListEquivalentToUniformWeights(t *testing.T) {
	user := skills.NewSet("python", "sql")

	legacy := skills.Uniform(skills.ParseLegacy("Python, SQL, Docker"))
	explicit := skills.WeightedSkillSet{"python": 1.0, "sql": 1.0, "docker": 1.0}

	assert.InDelta(t, Score(user, explicit), Score(user, legacy), 0.0001)
}

func TestScore_NormalizesRawInput(t *testing.T) {
	user := skills.SkillSet{"Golang": {}}
	required := skills.WeightedSkillSet{"  GO  ": 2.0}

	assert.InDelta(t, 1.0, Score(user, required), 0.001)
}

func TestScore_NegativeWeightsIgnored(t *testing.T) {
	user := skills.NewSet("python")
	required := skills.WeightedSkillSet{"python": 1.0, "go": -5.0}

	// The negative requirement vanishes, leaving a perfect match.
	assert.InDelta(t, 1.0, Score(user, required), 0.001)
}

func TestScore_DuplicateRequirementKeepsMaxWeight(t *testing.T) {
	user := skills.NewSet("go")
	required := skills.WeightedSkillSet{"Go": 0.4, "golang": 0.9}

	assert.InDelta(t, 1.0, Score(user, required), 0.001)
}

func TestScore_StaysInRangeUnderAdversarialWeights(t *testing.T) {
	user := skills.NewSet("a", "b")
	cases := []skills.WeightedSkillSet{
		{"a": math.MaxFloat64, "b": math.MaxFloat64},
		{"a": math.MaxFloat64, "c": math.MaxFloat64},
		{"a": 1e-300, "b": 1e300},
		{"a": math.NaN(), "b": math.Inf(1)},
	}

	for _, required := range cases {
		score := Score(user, required)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestClampScore_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-0.1))
	assert.Equal(t, 1.0, clampScore(1.1))
	assert.Equal(t, 0.5, clampScore(0.5))
	assert.Equal(t, 0.0, clampScore(math.NaN()))
	assert.Equal(t, 1.0, clampScore(math.Inf(1)))
	assert.Equal(t, 0.0, clampScore(math.Inf(-1)))
}
