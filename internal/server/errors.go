package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrEmailAlreadyExists indicates the email already has a profile
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrNoQuestions indicates the question bank has no questions for the
// requested skill, so no attempt can be started
type ErrNoQuestions struct {
	Skill string
}

func (e *ErrNoQuestions) Error() string {
	return fmt.Sprintf("no questions available for skill: %s", e.Skill)
}

// ErrAttemptNotPending indicates the attempt was already graded
type ErrAttemptNotPending struct {
	AttemptID uuid.UUID
}

func (e *ErrAttemptNotPending) Error() string {
	return fmt.Sprintf("attempt %s is not pending", e.AttemptID)
}

// ErrBankTooSmall indicates the question bank covers the skill but
// holds too few questions for a meaningful attempt
type ErrBankTooSmall struct {
	Skill string
	Have  int
	Need  int
}

func (e *ErrBankTooSmall) Error() string {
	return fmt.Sprintf("question bank for skill %s has %d questions; %d required", e.Skill, e.Have, e.Need)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists, *ErrAttemptNotPending, *ErrBankTooSmall:
		return http.StatusConflict
	case *ErrUserNotFound, *ErrNoQuestions:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
