// Package learning turns the gap between a user's skills and market
// demand into an ordered upskilling path.
package learning

import (
	"sort"

	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
)

// Step is one skill in a learning path, with the demand evidence that
// put it there.
type Step struct {
	Skill    string  `json:"skill"`
	Demand   float64 `json:"demand"`
	JobCount int     `json:"job_count"`
}

// Path aggregates the skills the user is missing across a set of
// postings. Demand for a skill is the sum of its weights over every
// posting that requires it; JobCount is how many postings ask for it.
// Steps are ordered by demand, then job count, then name, so the output
// is deterministic for a given catalog. The result is never nil.
func Path(userSkills skills.SkillSet, postings []recommend.Posting) []Step {
	user := skills.NormalizeSet(userSkills)

	demand := make(map[string]float64)
	jobCount := make(map[string]int)
	for _, posting := range postings {
		for skill, weight := range skills.NormalizeWeighted(posting.Skills) {
			if _, ok := user[skill]; ok {
				continue
			}
			demand[skill] += weight
			jobCount[skill]++
		}
	}

	steps := make([]Step, 0, len(demand))
	for skill, total := range demand {
		steps = append(steps, Step{Skill: skill, Demand: total, JobCount: jobCount[skill]})
	}

	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Demand != steps[j].Demand {
			return steps[i].Demand > steps[j].Demand
		}
		if steps[i].JobCount != steps[j].JobCount {
			return steps[i].JobCount > steps[j].JobCount
		}
		return steps[i].Skill < steps[j].Skill
	})

	return steps
}

// Outlook compares a user's fit for one target posting today against
// the fit they would have after closing every missing skill.
type Outlook struct {
	JobID     string   `json:"job_id"`
	Current   float64  `json:"current_score"`
	Projected float64  `json:"projected_score"`
	Missing   []string `json:"missing_skills"`
}

// TargetOutlook scores the target twice: once with the user's current
// skills and once with the missing requirements added in. The projected
// score only reaches 1.0 when the upskilled profile matches the
// requirements exactly; unrelated extra skills keep similarity below 1.
func TargetOutlook(userSkills skills.SkillSet, target recommend.Posting) Outlook {
	user := skills.NormalizeSet(userSkills)
	required := skills.NormalizeWeighted(target.Skills)

	missing := make([]string, 0)
	for skill := range required {
		if _, ok := user[skill]; !ok {
			missing = append(missing, skill)
		}
	}
	sort.Strings(missing)

	upskilled := user.Union(skills.NewSet(missing...))

	return Outlook{
		JobID:     target.ID,
		Current:   recommend.Score(user, required),
		Projected: recommend.Score(upskilled, required),
		Missing:   missing,
	}
}
