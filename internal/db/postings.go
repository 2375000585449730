package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marcus/skillmatch/internal/recommend"
	"github.com/marcus/skillmatch/internal/skills"
)

// PostingCreateInput carries the fields for a new or upserted posting.
type PostingCreateInput struct {
	ExternalID   string
	Title        string
	Company      string
	Location     string
	URL          string
	Description  string
	SkillsText   string
	SkillWeights skills.WeightedSkillSet
	Source       string
}

const postingColumns = `id, external_id, title, company, location, url, description,
	        skills_text, skill_weights, status, source, created_at, updated_at`

func scanPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	var weightsJSON []byte

	err := row.Scan(&p.ID, &p.ExternalID, &p.Title, &p.Company, &p.Location, &p.URL,
		&p.Description, &p.SkillsText, &weightsJSON, &p.Status, &p.Source,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if weightsJSON != nil {
		var raw map[string]any
		if err := json.Unmarshal(weightsJSON, &raw); err == nil {
			p.SkillWeights = skills.FromRaw(raw)
		}
	}
	return &p, nil
}

func marshalWeights(w skills.WeightedSkillSet) ([]byte, error) {
	if len(w) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(skills.NormalizeWeighted(w))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skill weights: %w", err)
	}
	return data, nil
}

// CreatePosting inserts a posting created through the API.
func (db *DB) CreatePosting(ctx context.Context, input *PostingCreateInput) (*JobPosting, error) {
	weightsJSON, err := marshalWeights(input.SkillWeights)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = PostingSourceAPI
	}

	posting, err := scanPosting(db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (external_id, title, company, location, url, description,
		                           skills_text, skill_weights, status, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'open', $9)
		 RETURNING `+postingColumns,
		nullIfEmpty(input.ExternalID), input.Title, input.Company, nullIfEmpty(input.Location),
		nullIfEmpty(input.URL), nullIfEmpty(input.Description), nullIfEmpty(input.SkillsText),
		weightsJSON, source,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create posting: %w", err)
	}
	return posting, nil
}

// UpsertPosting creates or updates a posting keyed by its external ID;
// imports use it so re-running a catalog load is idempotent.
func (db *DB) UpsertPosting(ctx context.Context, input *PostingCreateInput) (*JobPosting, error) {
	if input.ExternalID == "" {
		return nil, fmt.Errorf("upsert requires an external id")
	}

	weightsJSON, err := marshalWeights(input.SkillWeights)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = PostingSourceCatalog
	}

	posting, err := scanPosting(db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (external_id, title, company, location, url, description,
		                           skills_text, skill_weights, status, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'open', $9)
		 ON CONFLICT (external_id) DO UPDATE SET
		     title = $2,
		     company = $3,
		     location = $4,
		     url = $5,
		     description = $6,
		     skills_text = $7,
		     skill_weights = $8,
		     source = $9,
		     updated_at = NOW()
		 RETURNING `+postingColumns,
		input.ExternalID, input.Title, input.Company, nullIfEmpty(input.Location),
		nullIfEmpty(input.URL), nullIfEmpty(input.Description), nullIfEmpty(input.SkillsText),
		weightsJSON, source,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert posting: %w", err)
	}
	return posting, nil
}

// PostingUpdateInput carries the editable fields of an existing posting.
// Status, source, and external ID are managed by their own operations.
type PostingUpdateInput struct {
	Title        string
	Company      string
	Location     string
	URL          string
	Description  string
	SkillsText   string
	SkillWeights skills.WeightedSkillSet
}

// UpdatePosting replaces a posting's editable fields. Returns nil
// without error when the posting does not exist.
func (db *DB) UpdatePosting(ctx context.Context, id uuid.UUID, input *PostingUpdateInput) (*JobPosting, error) {
	weightsJSON, err := marshalWeights(input.SkillWeights)
	if err != nil {
		return nil, err
	}

	posting, err := scanPosting(db.pool.QueryRow(ctx,
		`UPDATE job_postings
		 SET title = $2, company = $3, location = $4, url = $5, description = $6,
		     skills_text = $7, skill_weights = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+postingColumns,
		id, input.Title, input.Company, nullIfEmpty(input.Location), nullIfEmpty(input.URL),
		nullIfEmpty(input.Description), nullIfEmpty(input.SkillsText), weightsJSON,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update posting: %w", err)
	}
	return posting, nil
}

// GetPosting retrieves a posting by ID. Returns nil without error when
// the posting does not exist.
func (db *DB) GetPosting(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	posting, err := scanPosting(db.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE id = $1`,
		id,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return posting, nil
}

// ListPostingsOptions contains filters for listing postings
type ListPostingsOptions struct {
	Status  string
	Company string
	Limit   int
	Offset  int
}

// ListPostings lists postings with optional filters and pagination,
// newest first. Returns the page and the total match count.
func (db *DB) ListPostings(ctx context.Context, opts ListPostingsOptions) ([]JobPosting, int, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if opts.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, opts.Status)
		argIndex++
	}
	if opts.Company != "" {
		conditions = append(conditions, fmt.Sprintf("company ILIKE $%d", argIndex))
		args = append(args, "%"+opts.Company+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM job_postings %s", whereClause)
	var total int
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count postings: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT `+postingColumns+`
		 FROM job_postings %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan posting: %w", err)
		}
		postings = append(postings, *posting)
	}
	return postings, total, nil
}

// PostingsForRanking loads every open posting in stable catalog order
// (oldest first, ID as tiebreak) so equal-score ranking output is
// deterministic across calls.
func (db *DB) PostingsForRanking(ctx context.Context) ([]recommend.Posting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, skills_text, skill_weights
		 FROM job_postings
		 WHERE status = $1
		 ORDER BY created_at ASC, id ASC`,
		PostingStatusOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load postings for ranking: %w", err)
	}
	defer rows.Close()

	var postings []recommend.Posting
	for rows.Next() {
		var p JobPosting
		var weightsJSON []byte
		if err := rows.Scan(&p.ID, &p.SkillsText, &weightsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		if weightsJSON != nil {
			var raw map[string]any
			if err := json.Unmarshal(weightsJSON, &raw); err == nil {
				p.SkillWeights = skills.FromRaw(raw)
			}
		}
		postings = append(postings, p.ForRanking())
	}
	return postings, nil
}

// PostingSummary is a lightweight view of a posting used to decorate
// ranked matches.
type PostingSummary struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Status  string    `json:"status"`
}

// PostingSummaries loads title and company for a set of posting IDs.
func (db *DB) PostingSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]PostingSummary, error) {
	summaries := make(map[uuid.UUID]PostingSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, status FROM job_postings WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load posting summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s PostingSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Company, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan posting summary: %w", err)
		}
		summaries[s.ID] = s
	}
	return summaries, nil
}

// ClosePosting marks a posting closed so it stops appearing in
// recommendations.
func (db *DB) ClosePosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE job_postings SET status = $1, updated_at = NOW() WHERE id = $2`,
		PostingStatusClosed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to close posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("posting not found: %s", id)
	}
	return nil
}

// DeletePosting removes a posting.
func (db *DB) DeletePosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("posting not found: %s", id)
	}
	return nil
}

// nullIfEmpty converts empty strings to nil for nullable columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
