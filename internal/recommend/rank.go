// Package recommend - rank.go orders a set of postings by match score.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marcus/skillmatch/internal/skills"
)

// Posting is the slice of a job posting the scorer cares about: an
// identifier and the weighted skill requirements.
type Posting struct {
	ID     string
	Skills skills.WeightedSkillSet
}

// Match is one scored posting in a ranking.
type Match struct {
	JobID         string   `json:"job_id"`
	Score         float64  `json:"score"`
	Similarity    float64  `json:"similarity"`
	Coverage      float64  `json:"coverage"`
	MatchedSkills []string `json:"matched_skills"`
	Notes         string   `json:"notes,omitempty"`
}

// Rank scores every posting against the user's skills and returns the
// matches sorted by score, best first. Postings with equal scores keep
// their input order, so a caller that passes postings in a stable
// catalog order gets deterministic output. The result is never nil.
func Rank(userSkills skills.SkillSet, postings []Posting) []Match {
	user := skills.NormalizeSet(userSkills)

	matches := make([]Match, 0, len(postings))
	for _, posting := range postings {
		required := skills.NormalizeWeighted(posting.Skills)

		similarity := jaccard(user, required.Set())
		coverage, matched := weightedCoverage(user, required)
		sort.Strings(matched)

		score := clampScore(similarityWeight*similarity + coverageWeight*coverage)

		matches = append(matches, Match{
			JobID:         posting.ID,
			Score:         score,
			Similarity:    similarity,
			Coverage:      coverage,
			MatchedSkills: matched,
			Notes:         describeMatch(coverage, matched),
		})
	}

	// Stable sort keeps input order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// describeMatch creates a brief explanation of how well a posting fits.
func describeMatch(coverage float64, matched []string) string {
	if len(matched) == 0 {
		return "No skill matches"
	}

	var strength string
	switch {
	case coverage >= 0.7:
		strength = "Strong"
	case coverage >= 0.4:
		strength = "Moderate"
	default:
		strength = "Weak"
	}
	return fmt.Sprintf("%s skill match (%s)", strength, strings.Join(matched, ", "))
}
