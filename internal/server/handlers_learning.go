package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcus/skillmatch/internal/learning"
)

// ---------------------------------------------------------------------
// Learning Path Handlers
// ---------------------------------------------------------------------

// handleLearningPath aggregates the skills the user is missing across
// every open posting, ordered by market demand.
func (s *Server) handleLearningPath(w http.ResponseWriter, r *http.Request) {
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

	userSkills, err := s.db.SkillSetForUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	postings, err := s.db.PostingsForRanking(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	steps := learning.Path(userSkills, postings)

	if limit := parseQueryInt(r, "limit", 0, 0); limit > 0 && len(steps) > limit {
		steps = steps[:limit]
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"steps":   steps,
		"count":   len(steps),
	})
}

// handleOutlook compares the user's fit for one posting today against
// the fit they would have after closing every missing skill.
func (s *Server) handleOutlook(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	userID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	postingStr := r.PathValue("posting_id")
	postingID, err := uuid.Parse(postingStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid posting ID")
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

	posting, err := s.db.GetPosting(r.Context(), postingID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if posting == nil {
		s.errorResponse(w, http.StatusNotFound, "Posting not found")
		return
	}

	userSkills, err := s.db.SkillSetForUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	outlook := learning.TargetOutlook(userSkills, posting.ForRanking())

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"title":   posting.Title,
		"company": posting.Company,
		"outlook": outlook,
	})
}
