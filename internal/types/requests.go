// Package types provides the request types shared by the HTTP API and CLI.
package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/marcus/skillmatch/internal/skills"
)

// CreateUserRequest represents the request to create a new user profile.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserRequest replaces a user's name and email.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Email string `json:"email" validate:"required,email"`
}

// ReplaceSkillsRequest replaces a user's claimed skills wholesale.
// An empty list clears all claimed skills; verified skills are untouched.
type ReplaceSkillsRequest struct {
	Skills []string `json:"skills"`
}

// CreatePostingRequest represents the request to create a job posting.
// Skills accepts a weighted object, a flat list, or a comma-separated
// string.
type CreatePostingRequest struct {
	ExternalID  string          `json:"external_id,omitempty"`
	Title       string          `json:"title" validate:"required,min=1"`
	Company     string          `json:"company" validate:"required,min=1"`
	Location    string          `json:"location,omitempty"`
	URL         string          `json:"url,omitempty" validate:"omitempty,url"`
	Description string          `json:"description,omitempty"`
	Skills      skills.Flexible `json:"skills"`
}

// UpdatePostingRequest replaces a posting's editable fields. Status,
// source, and external ID are managed by their own operations.
type UpdatePostingRequest struct {
	Title       string          `json:"title" validate:"required,min=1"`
	Company     string          `json:"company" validate:"required,min=1"`
	Location    string          `json:"location,omitempty"`
	URL         string          `json:"url,omitempty" validate:"omitempty,url"`
	Description string          `json:"description,omitempty"`
	Skills      skills.Flexible `json:"skills"`
}

// IngestRequest asks the server to fetch job posting pages and store
// them as postings. DryRun returns the extracted postings without
// writing anything.
type IngestRequest struct {
	URLs   []string `json:"urls" validate:"required,min=1,max=20,dive,url"`
	DryRun bool     `json:"dry_run,omitempty"`
}

// PreviewJob is one posting in a stateless ranking preview.
type PreviewJob struct {
	ID     string          `json:"id" validate:"required"`
	Skills skills.Flexible `json:"skills"`
}

// PreviewRequest ranks ad-hoc postings against ad-hoc user skills
// without touching stored data.
type PreviewRequest struct {
	UserSkills []string     `json:"user_skills"`
	Jobs       []PreviewJob `json:"jobs" validate:"omitempty,dive"`
	Limit      int          `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	MinScore   float64      `json:"min_score,omitempty" validate:"omitempty,min=0,max=1"`
}

// StartAttemptRequest begins an assessment attempt for a skill.
// Questions overrides the configured number of questions per attempt;
// an attempt never draws fewer than three.
type StartAttemptRequest struct {
	Skill     string `json:"skill" validate:"required,min=1"`
	Questions int    `json:"questions,omitempty" validate:"omitempty,min=3,max=50"`
}

// SubmitAttemptRequest carries the candidate's answers keyed by
// question ID. Each answer is an index into the shuffled choices the
// candidate was shown. Unanswered questions count as wrong.
type SubmitAttemptRequest struct {
	Answers map[string]int `json:"answers"`
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateUserRequest using the validator.
func (r *UpdateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreatePostingRequest using the validator.
func (r *CreatePostingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdatePostingRequest using the validator.
func (r *UpdatePostingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the IngestRequest using the validator.
func (r *IngestRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PreviewRequest using the validator.
func (r *PreviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the StartAttemptRequest using the validator.
func (r *StartAttemptRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
