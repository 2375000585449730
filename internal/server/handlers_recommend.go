package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
	"github.com/marcus/skillmatch/internal/types"
)

// parseQueryFloat parses a float query parameter clamped to [0, 1].
func parseQueryFloat(r *http.Request, key string, defaultValue float64) float64 {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val < 0 {
		return defaultValue
	}
	if val > 1 {
		return 1
	}
	return val
}

// ---------------------------------------------------------------------
// Recommendation Handlers
// ---------------------------------------------------------------------

// RecommendedPosting is one ranked match decorated with the posting's
// display fields.
type RecommendedPosting struct {
	recommend.Match
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

// handleRecommendations ranks every open posting against the user's
// combined claimed and verified skills. Supports min_score, limit, and
// offset query parameters.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
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

	matches := recommend.Rank(userSkills, postings)

	minScore := parseQueryFloat(r, "min_score", 0)
	if minScore > 0 {
		kept := matches[:0]
		for _, match := range matches {
			if match.Score >= minScore {
				kept = append(kept, match)
			}
		}
		matches = kept
	}

	total := len(matches)
	limit := parseQueryInt(r, "limit", 20, 100)
	offset := parseQueryInt(r, "offset", 0, 0)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := matches[offset:end]

	recommendations, err := s.decorateMatches(r, page)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":         userID,
		"recommendations": recommendations,
		"total":           total,
		"limit":           limit,
		"offset":          offset,
	})
}

// decorateMatches attaches the posting title and company to each match
// on the returned page.
func (s *Server) decorateMatches(r *http.Request, page []recommend.Match) ([]RecommendedPosting, error) {
	ids := make([]uuid.UUID, 0, len(page))
	for _, match := range page {
		if id, err := uuid.Parse(match.JobID); err == nil {
			ids = append(ids, id)
		}
	}

	summaries, err := s.db.PostingSummaries(r.Context(), ids)
	if err != nil {
		return nil, err
	}

	recommendations := make([]RecommendedPosting, 0, len(page))
	for _, match := range page {
		rec := RecommendedPosting{Match: match}
		rec.Score = round3(match.Score)
		rec.Similarity = round3(match.Similarity)
		rec.Coverage = round3(match.Coverage)
		if id, err := uuid.Parse(match.JobID); err == nil {
			if summary, ok := summaries[id]; ok {
				rec.Title = summary.Title
				rec.Company = summary.Company
			}
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

// round3 rounds a score to three decimals for the response payload.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// handlePreview ranks ad-hoc postings against ad-hoc user skills
// without touching stored data. Pure computation, no database reads.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req types.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	postings := make([]recommend.Posting, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		postings = append(postings, recommend.Posting{
			ID:     job.ID,
			Skills: job.Skills.Weighted(),
		})
	}

	matches := recommend.Rank(skills.NewSet(req.UserSkills...), postings)

	if req.MinScore > 0 {
		kept := matches[:0]
		for _, match := range matches {
			if match.Score >= req.MinScore {
				kept = append(kept, match)
			}
		}
		matches = kept
	}
	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}
