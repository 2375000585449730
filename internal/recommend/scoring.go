// Package recommend scores job postings against a user's skill profile.
package recommend

import (
	"math"

	"github.com/marcus/skillmatch/internal/skills"
)

// Weights for the two scoring components. Coverage dominates because a
// candidate who holds the heavily weighted requirements is a better fit
// than one who merely overlaps on many minor skills.
const (
	similarityWeight = 0.4
	coverageWeight   = 0.6
)

// Similarity computes the Jaccard similarity between the user's skills
// and a posting's required skills: intersection size over union size.
// Both sides are normalized before comparison. An empty union scores 0.0.
func Similarity(userSkills, jobSkills skills.SkillSet) float64 {
	return jaccard(skills.NormalizeSet(userSkills), skills.NormalizeSet(jobSkills))
}

// Coverage computes how much of the posting's weighted demand the user
// satisfies: the sum of weights of required skills the user holds,
// divided by the sum of all required weights. A posting with no
// effective requirements scores 0.0.
func Coverage(userSkills skills.SkillSet, required skills.WeightedSkillSet) float64 {
	coverage, _ := weightedCoverage(skills.NormalizeSet(userSkills), skills.NormalizeWeighted(required))
	return coverage
}

// Score blends similarity and coverage into a single relevance score in
// [0, 1]. Inputs are normalized on the way in, so callers can pass raw
// user input or storage rows directly.
func Score(userSkills skills.SkillSet, required skills.WeightedSkillSet) float64 {
	user := skills.NormalizeSet(userSkills)
	req := skills.NormalizeWeighted(required)

	similarity := jaccard(user, req.Set())
	coverage, _ := weightedCoverage(user, req)

	return clampScore(similarityWeight*similarity + coverageWeight*coverage)
}

// jaccard computes |intersection| / |union| over two normalized sets.
func jaccard(a, b skills.SkillSet) float64 {
	intersection := 0
	for skill := range a {
		if _, ok := b[skill]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// weightedCoverage sums the weights of required skills the user holds,
// normalized by the total required weight. Returns the coverage and the
// matched skill names in map order; callers that surface the list sort it.
func weightedCoverage(userSkills skills.SkillSet, required skills.WeightedSkillSet) (float64, []string) {
	totalWeight := 0.0
	matchedWeight := 0.0
	matched := make([]string, 0)
	for skill, weight := range required {
		totalWeight += weight
		if _, ok := userSkills[skill]; ok {
			matchedWeight += weight
			matched = append(matched, skill)
		}
	}

	if totalWeight <= 0 {
		return 0.0, matched
	}
	return matchedWeight / totalWeight, matched
}

// clampScore forces a score into [0, 1]. NaN collapses to 0.0 so a
// degenerate input can never leak an unusable score to callers.
func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0.0
	}
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
