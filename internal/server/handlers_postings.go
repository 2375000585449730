package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/ingest"
	"github.com/marcus/skillmatch/internal/types"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// ---------------------------------------------------------------------
// Job Posting Handlers
// ---------------------------------------------------------------------

// handleCreatePosting stores a job posting. A posting with an external
// ID is upserted so repeated submissions of the same catalog entry are
// idempotent.
func (s *Server) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	input := &db.PostingCreateInput{
		ExternalID:   req.ExternalID,
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		URL:          req.URL,
		Description:  req.Description,
		SkillWeights: req.Skills.Weighted(),
		Source:       db.PostingSourceAPI,
	}

	var posting *db.JobPosting
	var err error
	if input.ExternalID != "" {
		posting, err = s.db.UpsertPosting(r.Context(), input)
	} else {
		posting, err = s.db.CreatePosting(r.Context(), input)
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, posting)
}

func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != db.PostingStatusOpen && status != db.PostingStatusClosed {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	opts := db.ListPostingsOptions{
		Status:  status,
		Company: r.URL.Query().Get("company"),
		Limit:   parseQueryInt(r, "limit", 50, 100),
		Offset:  parseQueryInt(r, "offset", 0, 0),
	}

	postings, total, err := s.db.ListPostings(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"postings": postings,
		"total":    total,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	postingID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid posting ID")
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

	s.jsonResponse(w, http.StatusOK, posting)
}

// handleUpdatePosting replaces a posting's editable fields. Status,
// source, and external ID keep their stored values.
func (s *Server) handleUpdatePosting(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	postingID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid posting ID")
		return
	}

	var req types.UpdatePostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	posting, err := s.db.UpdatePosting(r.Context(), postingID, &db.PostingUpdateInput{
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		URL:          req.URL,
		Description:  req.Description,
		SkillWeights: req.Skills.Weighted(),
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if posting == nil {
		s.errorResponse(w, http.StatusNotFound, "Posting not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, posting)
}

// handleClosePosting marks a posting closed so it stops appearing in
// recommendations. Closing an already-closed posting is a no-op.
func (s *Server) handleClosePosting(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	postingID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid posting ID")
		return
	}

	if err := s.db.ClosePosting(r.Context(), postingID); err != nil {
		if err.Error() == "posting not found: "+postingID.String() {
			s.errorResponse(w, http.StatusNotFound, "Posting not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleDeletePosting(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	postingID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid posting ID")
		return
	}

	if err := s.db.DeletePosting(r.Context(), postingID); err != nil {
		if err.Error() == "posting not found: "+postingID.String() {
			s.errorResponse(w, http.StatusNotFound, "Posting not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------
// Ingestion Handlers
// ---------------------------------------------------------------------

// IngestFailure reports one URL that could not be ingested.
type IngestFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// handleIngestPostings fetches job posting pages, extracts their text
// and skills, and stores them as postings. Failures are reported per
// URL and never fail the batch. With dry_run the extracted postings are
// returned without writing anything.
func (s *Server) handleIngestPostings(w http.ResponseWriter, r *http.Request) {
	var req types.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	results, errs := s.ingestor.FromURLs(r.Context(), req.URLs)

	var failed []IngestFailure
	var extracted []*ingest.Posting
	for i, result := range results {
		if errs[i] != nil {
			failed = append(failed, IngestFailure{URL: req.URLs[i], Error: errs[i].Error()})
			continue
		}
		extracted = append(extracted, result)
	}

	if req.DryRun {
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"postings": extracted,
			"failed":   failed,
			"dry_run":  true,
		})
		return
	}

	stored := make([]*db.JobPosting, 0, len(extracted))
	for _, p := range extracted {
		posting, err := s.db.UpsertPosting(r.Context(), ingestedPostingInput(p))
		if err != nil {
			failed = append(failed, IngestFailure{URL: p.URL, Error: err.Error()})
			continue
		}
		stored = append(stored, posting)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"postings": stored,
		"failed":   failed,
		"ingested": len(stored),
	})
}

// ingestedPostingInput maps an extracted posting to a storable row. The
// content hash doubles as the external ID, so re-ingesting an unchanged
// page updates its existing row instead of duplicating it.
func ingestedPostingInput(p *ingest.Posting) *db.PostingCreateInput {
	title := p.Title
	if title == "" {
		title = "Untitled posting"
	}
	company := p.Company
	if company == "" {
		company = hostOf(p.URL)
	}

	return &db.PostingCreateInput{
		ExternalID:  p.Hash,
		Title:       title,
		Company:     company,
		URL:         p.URL,
		Description: p.Text,
		SkillsText:  strings.Join(p.Skills, ", "),
		Source:      db.PostingSourceImport,
	}
}

func hostOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return "Unknown company"
	}
	return parsed.Host
}
