package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcus/skillmatch/internal/assess"
	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
)

// Skill sources on a user profile
const (
	SkillSourceClaimed  = "claimed"
	SkillSourceVerified = "verified"
)

// Job posting lifecycle states
const (
	PostingStatusOpen   = "open"
	PostingStatusClosed = "closed"
)

// Where a posting came from
const (
	PostingSourceAPI     = "api"
	PostingSourceCatalog = "catalog"
	PostingSourceImport  = "import"
)

// Assessment attempt states
const (
	AttemptStatusPending = "pending"
	AttemptStatusGraded  = "graded"
)

// User represents a platform user
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSkill is one skill on a user profile. Claimed skills are
// self-reported; verified skills were earned through an assessment and
// carry the proficiency of the passing attempt.
type UserSkill struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Skill       string    `json:"skill"`
	Source      string    `json:"source"`
	Proficiency *float64  `json:"proficiency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobPosting is a stored job. Requirements live in two columns:
// skill_weights (JSONB mapping) for weighted postings and skills_text
// (delimited string) for rows imported from the legacy catalog shape.
type JobPosting struct {
	ID           uuid.UUID               `json:"id"`
	ExternalID   *string                 `json:"external_id,omitempty"`
	Title        string                  `json:"title"`
	Company      string                  `json:"company"`
	Location     *string                 `json:"location,omitempty"`
	URL          *string                 `json:"url,omitempty"`
	Description  *string                 `json:"description,omitempty"`
	SkillsText   *string                 `json:"skills_text,omitempty"`
	SkillWeights skills.WeightedSkillSet `json:"skill_weights,omitempty"`
	Status       string                  `json:"status"`
	Source       string                  `json:"source"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// EffectiveSkills merges the two requirement columns into the weighted
// set the scorer consumes. The weighted column wins when both are set;
// a legacy flat list gets uniform weights.
func (p *JobPosting) EffectiveSkills() skills.WeightedSkillSet {
	if len(p.SkillWeights) > 0 {
		return skills.NormalizeWeighted(p.SkillWeights)
	}
	if p.SkillsText != nil && *p.SkillsText != "" {
		return skills.Uniform(skills.ParseLegacy(*p.SkillsText))
	}
	return skills.WeightedSkillSet{}
}

// ForRanking converts the row to the scorer's view of a posting.
func (p *JobPosting) ForRanking() recommend.Posting {
	return recommend.Posting{ID: p.ID.String(), Skills: p.EffectiveSkills()}
}

// IsOpen reports whether the posting still accepts candidates.
func (p *JobPosting) IsOpen() bool {
	return p.Status == PostingStatusOpen
}

// Question is a stored bank question. ExternalID is the authoring
// identifier from the bank file; attempts reference it.
type Question struct {
	ID           uuid.UUID `json:"id"`
	ExternalID   string    `json:"external_id"`
	Skill        string    `json:"skill"`
	Prompt       string    `json:"prompt"`
	Choices      []string  `json:"choices"`
	CorrectIndex int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BankQuestion converts the row to the grader's view of a question,
// keyed by the authoring identifier.
func (q *Question) BankQuestion() assess.Question {
	return assess.Question{
		ID:           q.ExternalID,
		Skill:        q.Skill,
		Prompt:       q.Prompt,
		Choices:      q.Choices,
		CorrectIndex: q.CorrectIndex,
	}
}

// AssessmentAttempt is one run at verifying a skill. ChoiceOrders keeps
// the per-question shuffle that was shown to the candidate so grading
// can undo it.
type AssessmentAttempt struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Skill        string           `json:"skill"`
	QuestionIDs  []string         `json:"question_ids"`
	ChoiceOrders map[string][]int `json:"-"`
	Answers      map[string]int   `json:"answers,omitempty"`
	Score        *float64         `json:"score,omitempty"`
	Passed       *bool            `json:"passed,omitempty"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// IsGraded reports whether the attempt has already been submitted.
func (a *AssessmentAttempt) IsGraded() bool {
	return a.Status == AttemptStatusGraded
}

// SkillQuestionCount summarizes bank coverage for one skill.
type SkillQuestionCount struct {
	Skill     string `json:"skill"`
	Questions int    `json:"questions"`
}
