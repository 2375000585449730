package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marcus/skillmatch/internal/skills"
)

// CreateUser creates a user and returns the stored row.
func (db *DB) CreateUser(ctx context.Context, name, email string) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email)
		 VALUES ($1, $2)
		 RETURNING id, name, email, created_at, updated_at`,
		name, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID. Returns nil without error when the
// user does not exist.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateUser replaces a user's name and email. Returns nil without
// error when the user does not exist.
func (db *DB) UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, email = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, email, created_at, updated_at`,
		id, name, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email. Returns nil without error
// when no user has the address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user and, via cascade, their skills and attempts.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// ReplaceClaimedSkills replaces the user's self-reported skills
// wholesale. Names are normalized and deduplicated; verified skills are
// untouched. Returns the stored claimed rows in sorted order.
func (db *DB) ReplaceClaimedSkills(ctx context.Context, userID uuid.UUID, names []string) ([]UserSkill, error) {
	normalized := skills.NewSet(names...).Slice()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`DELETE FROM user_skills WHERE user_id = $1 AND source = $2`,
		userID, SkillSourceClaimed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to clear claimed skills: %w", err)
	}

	stored := make([]UserSkill, 0, len(normalized))
	for _, skill := range normalized {
		var s UserSkill
		err = tx.QueryRow(ctx,
			`INSERT INTO user_skills (user_id, skill, source)
			 VALUES ($1, $2, $3)
			 RETURNING id, user_id, skill, source, proficiency, created_at, updated_at`,
			userID, skill, SkillSourceClaimed,
		).Scan(&s.ID, &s.UserID, &s.Skill, &s.Source, &s.Proficiency, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert claimed skill %s: %w", skill, err)
		}
		stored = append(stored, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stored, nil
}

// GrantVerifiedSkill records a passed assessment as a verified skill.
// Re-verifying keeps the best proficiency seen so a weaker retake never
// downgrades an earlier result.
func (db *DB) GrantVerifiedSkill(ctx context.Context, userID uuid.UUID, skill string, proficiency float64) (*UserSkill, error) {
	normalized := skills.Normalize(skill)
	if normalized == "" {
		return nil, fmt.Errorf("skill name is empty after normalization")
	}

	var s UserSkill
	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_skills (user_id, skill, source, proficiency)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, skill, source) DO UPDATE SET
		     proficiency = GREATEST(user_skills.proficiency, $4),
		     updated_at = NOW()
		 RETURNING id, user_id, skill, source, proficiency, created_at, updated_at`,
		userID, normalized, SkillSourceVerified, proficiency,
	).Scan(&s.ID, &s.UserID, &s.Skill, &s.Source, &s.Proficiency, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to grant verified skill: %w", err)
	}
	return &s, nil
}

// ListUserSkills retrieves all skills on a profile, verified first, then
// alphabetical.
func (db *DB) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]UserSkill, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, skill, source, proficiency, created_at, updated_at
		 FROM user_skills
		 WHERE user_id = $1
		 ORDER BY source DESC, skill ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user skills: %w", err)
	}
	defer rows.Close()

	var userSkills []UserSkill
	for rows.Next() {
		var s UserSkill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Skill, &s.Source, &s.Proficiency, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user skill: %w", err)
		}
		userSkills = append(userSkills, s)
	}
	return userSkills, nil
}

// SkillSetForUser returns the union of claimed and verified skills as
// the set the scorer consumes.
func (db *DB) SkillSetForUser(ctx context.Context, userID uuid.UUID) (skills.SkillSet, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT skill FROM user_skills WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load user skill set: %w", err)
	}
	defer rows.Close()

	set := make(skills.SkillSet)
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		set.Add(skill)
	}
	return set, nil
}
