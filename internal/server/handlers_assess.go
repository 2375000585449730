package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcus/skillmatch/internal/assess"
	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/types"
)

// ---------------------------------------------------------------------
// Assessment Handlers
// ---------------------------------------------------------------------

// handleAssessableSkills lists every skill the question bank can verify,
// with its question count.
func (s *Server) handleAssessableSkills(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.SkillsWithQuestions(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"skills": counts,
		"count":  len(counts),
	})
}

// handleStartAttempt draws a random question set for the skill, shuffles
// each question's choices, and stores the attempt as pending. The
// response carries the candidate-facing questions with correct answers
// withheld.
func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	userID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req types.StartAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if user == nil {
		s.errorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	rows, err := s.db.QuestionsBySkill(r.Context(), req.Skill)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if len(rows) == 0 {
		missing := &ErrNoQuestions{Skill: req.Skill}
		s.errorResponse(w, HTTPStatus(missing), missing.Error())
		return
	}
	if len(rows) < minBankQuestions {
		small := &ErrBankTooSmall{Skill: req.Skill, Have: len(rows), Need: minBankQuestions}
		s.errorResponse(w, HTTPStatus(small), small.Error())
		return
	}

	bank := make([]assess.Question, 0, len(rows))
	for _, row := range rows {
		bank = append(bank, row.BankQuestion())
	}

	n := req.Questions
	if n <= 0 {
		n = s.attemptQuestions
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	shuffled := assess.Shuffle(assess.Sample(bank, n, rng), rng)

	questionIDs := make([]string, 0, len(shuffled))
	choiceOrders := make(map[string][]int, len(shuffled))
	for _, q := range shuffled {
		questionIDs = append(questionIDs, q.QuestionID)
		choiceOrders[q.QuestionID] = q.Order
	}

	attempt, err := s.db.CreateAttempt(r.Context(), &db.AttemptCreateInput{
		UserID:       userID,
		Skill:        req.Skill,
		QuestionIDs:  questionIDs,
		ChoiceOrders: choiceOrders,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"attempt_id": attempt.ID,
		"user_id":    attempt.UserID,
		"skill":      attempt.Skill,
		"questions":  shuffled,
		"created_at": attempt.CreatedAt,
	})
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	attemptID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid attempt ID")
		return
	}

	attempt, err := s.db.GetAttempt(r.Context(), attemptID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if attempt == nil {
		s.errorResponse(w, http.StatusNotFound, "Attempt not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, attempt)
}

// handleSubmitAttempt grades the submitted answers against the stored
// choice shuffle and closes the attempt. A passing score grants the
// skill as verified on the user's profile.
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	attemptID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid attempt ID")
		return
	}

	var req types.SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attempt, err := s.db.GetAttempt(r.Context(), attemptID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if attempt == nil {
		s.errorResponse(w, http.StatusNotFound, "Attempt not found")
		return
	}
	if attempt.IsGraded() {
		conflict := &ErrAttemptNotPending{AttemptID: attemptID}
		s.errorResponse(w, HTTPStatus(conflict), conflict.Error())
		return
	}

	rows, err := s.db.QuestionsBySkill(r.Context(), attempt.Skill)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	byID := make(map[string]assess.Question, len(rows))
	for _, row := range rows {
		byID[row.ExternalID] = row.BankQuestion()
	}

	// Questions that left the bank since the attempt started grade as
	// wrong rather than shrinking the denominator.
	questions := make([]assess.Question, 0, len(attempt.QuestionIDs))
	for _, questionID := range attempt.QuestionIDs {
		q, ok := byID[questionID]
		if !ok {
			q = assess.Question{ID: questionID, CorrectIndex: -1}
		}
		questions = append(questions, q)
	}

	result := assess.Grade(questions, attempt.ChoiceOrders, req.Answers)

	updated, err := s.db.CompleteAttempt(r.Context(), attemptID, req.Answers, result)
	if err != nil {
		if err.Error() == "attempt "+attemptID.String()+" is not pending" {
			conflict := &ErrAttemptNotPending{AttemptID: attemptID}
			s.errorResponse(w, HTTPStatus(conflict), conflict.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	if result.Passed {
		if _, err := s.db.GrantVerifiedSkill(r.Context(), updated.UserID, updated.Skill, result.Score); err != nil {
			s.log.Error("failed to grant verified skill",
				zap.String("user_id", updated.UserID.String()),
				zap.String("skill", updated.Skill),
				zap.Error(err),
			)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"attempt": updated,
		"result":  result,
	})
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	userID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if user == nil {
		s.errorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	limit := parseQueryInt(r, "limit", 20, 100)
	attempts, err := s.db.ListAttemptsByUser(r.Context(), userID, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
