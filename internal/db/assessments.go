package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marcus/skillmatch/internal/assess"
	"github.com/marcus/skillmatch/internal/skills"
)

// ReplaceQuestionBank replaces the stored question bank wholesale with
// the given questions. Attempts keep working because they reference
// questions by authoring ID inside their own rows, not by foreign key.
func (db *DB) ReplaceQuestionBank(ctx context.Context, questions []assess.Question) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return 0, fmt.Errorf("failed to clear question bank: %w", err)
	}

	for _, q := range questions {
		choicesJSON, err := json.Marshal(q.Choices)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal choices for %s: %w", q.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO questions (external_id, skill, prompt, choices, correct_index)
			 VALUES ($1, $2, $3, $4, $5)`,
			q.ID, skills.Normalize(q.Skill), q.Prompt, choicesJSON, q.CorrectIndex,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(questions), nil
}

// QuestionsBySkill retrieves the bank questions for a skill, ordered by
// authoring ID.
func (db *DB) QuestionsBySkill(ctx context.Context, skill string) ([]Question, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, external_id, skill, prompt, choices, correct_index, created_at, updated_at
		 FROM questions
		 WHERE skill = $1
		 ORDER BY external_id`,
		skills.Normalize(skill),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		var choicesJSON []byte
		if err := rows.Scan(&q.ID, &q.ExternalID, &q.Skill, &q.Prompt, &choicesJSON,
			&q.CorrectIndex, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal(choicesJSON, &q.Choices); err != nil {
			return nil, fmt.Errorf("failed to parse choices for %s: %w", q.ExternalID, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// SkillsWithQuestions summarizes bank coverage: every skill that has at
// least one question, with its question count, alphabetical.
func (db *DB) SkillsWithQuestions(ctx context.Context) ([]SkillQuestionCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT skill, COUNT(*) FROM questions GROUP BY skill ORDER BY skill`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize question bank: %w", err)
	}
	defer rows.Close()

	var counts []SkillQuestionCount
	for rows.Next() {
		var c SkillQuestionCount
		if err := rows.Scan(&c.Skill, &c.Questions); err != nil {
			return nil, fmt.Errorf("failed to scan bank summary: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// AttemptCreateInput carries the server-generated state of a new attempt.
type AttemptCreateInput struct {
	UserID       uuid.UUID
	Skill        string
	QuestionIDs  []string
	ChoiceOrders map[string][]int
}

// CreateAttempt stores a pending attempt with its question selection and
// the choice shuffle shown to the candidate.
func (db *DB) CreateAttempt(ctx context.Context, input *AttemptCreateInput) (*AssessmentAttempt, error) {
	questionsJSON, err := json.Marshal(input.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question ids: %w", err)
	}
	ordersJSON, err := json.Marshal(input.ChoiceOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal choice orders: %w", err)
	}

	var a AssessmentAttempt
	var questionsRaw, ordersRaw []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO assessment_attempts (user_id, skill, question_ids, choice_orders, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id, user_id, skill, question_ids, choice_orders, status, created_at`,
		input.UserID, skills.Normalize(input.Skill), questionsJSON, ordersJSON,
	).Scan(&a.ID, &a.UserID, &a.Skill, &questionsRaw, &ordersRaw, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	_ = json.Unmarshal(questionsRaw, &a.QuestionIDs)
	_ = json.Unmarshal(ordersRaw, &a.ChoiceOrders)
	return &a, nil
}

// GetAttempt retrieves an attempt by ID. Returns nil without error when
// the attempt does not exist.
func (db *DB) GetAttempt(ctx context.Context, id uuid.UUID) (*AssessmentAttempt, error) {
	var a AssessmentAttempt
	var questionsRaw, ordersRaw, answersRaw []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, skill, question_ids, choice_orders, answers,
		        score, passed, status, created_at, completed_at
		 FROM assessment_attempts WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.UserID, &a.Skill, &questionsRaw, &ordersRaw, &answersRaw,
		&a.Score, &a.Passed, &a.Status, &a.CreatedAt, &a.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	_ = json.Unmarshal(questionsRaw, &a.QuestionIDs)
	_ = json.Unmarshal(ordersRaw, &a.ChoiceOrders)
	if answersRaw != nil {
		_ = json.Unmarshal(answersRaw, &a.Answers)
	}
	return &a, nil
}

// CompleteAttempt records the submitted answers and the graded result.
// Only pending attempts can be completed; grading the same attempt twice
// leaves the first result in place and reports no matching row.
func (db *DB) CompleteAttempt(ctx context.Context, id uuid.UUID, answers map[string]int, result assess.Result) (*AssessmentAttempt, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	var a AssessmentAttempt
	var questionsRaw, ordersRaw, answersRaw []byte
	err = db.pool.QueryRow(ctx,
		`UPDATE assessment_attempts
		 SET answers = $1, score = $2, passed = $3, status = 'graded', completed_at = NOW()
		 WHERE id = $4 AND status = 'pending'
		 RETURNING id, user_id, skill, question_ids, choice_orders, answers,
		           score, passed, status, created_at, completed_at`,
		answersJSON, result.Score, result.Passed, id,
	).Scan(&a.ID, &a.UserID, &a.Skill, &questionsRaw, &ordersRaw, &answersRaw,
		&a.Score, &a.Passed, &a.Status, &a.CreatedAt, &a.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("attempt %s is not pending", id)
		}
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}

	_ = json.Unmarshal(questionsRaw, &a.QuestionIDs)
	_ = json.Unmarshal(ordersRaw, &a.ChoiceOrders)
	_ = json.Unmarshal(answersRaw, &a.Answers)
	return &a, nil
}

// ListAttemptsByUser retrieves a user's attempts, newest first.
func (db *DB) ListAttemptsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]AssessmentAttempt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, skill, question_ids, choice_orders, answers,
		        score, passed, status, created_at, completed_at
		 FROM assessment_attempts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []AssessmentAttempt
	for rows.Next() {
		var a AssessmentAttempt
		var questionsRaw, ordersRaw, answersRaw []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.Skill, &questionsRaw, &ordersRaw, &answersRaw,
			&a.Score, &a.Passed, &a.Status, &a.CreatedAt, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		_ = json.Unmarshal(questionsRaw, &a.QuestionIDs)
		_ = json.Unmarshal(ordersRaw, &a.ChoiceOrders)
		if answersRaw != nil {
			_ = json.Unmarshal(answersRaw, &a.Answers)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
