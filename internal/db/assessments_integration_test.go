//go:build integration

package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/marcus/skillmatch/internal/assess"
)

func testBank() []assess.Question {
	return []assess.Question{
		{ID: "it-go-1", Skill: "Go", Prompt: "Zero value of a map?", Choices: []string{"nil", "empty map"}, CorrectIndex: 0},
		{ID: "it-go-2", Skill: "go", Prompt: "Keyword for goroutines?", Choices: []string{"go", "run"}, CorrectIndex: 0},
		{ID: "it-sql-1", Skill: "SQL", Prompt: "Clause for filtering rows?", Choices: []string{"WHERE", "GROUP BY"}, CorrectIndex: 0},
	}
}

// =============================================================================
// Question Bank Integration Tests
// =============================================================================

func TestIntegration_QuestionBank(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	n, err := db.ReplaceQuestionBank(ctx, testBank())
	if err != nil {
		t.Fatalf("ReplaceQuestionBank failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Inserted %d questions, want 3", n)
	}

	t.Run("skill lookup is normalized", func(t *testing.T) {
		questions, err := db.QuestionsBySkill(ctx, "Golang")
		if err != nil {
			t.Fatalf("QuestionsBySkill failed: %v", err)
		}
		if len(questions) != 2 {
			t.Fatalf("Got %d go questions, want 2", len(questions))
		}
		if questions[0].ExternalID != "it-go-1" {
			t.Errorf("First question = %q, want authoring order", questions[0].ExternalID)
		}
	})

	t.Run("coverage summary", func(t *testing.T) {
		counts, err := db.SkillsWithQuestions(ctx)
		if err != nil {
			t.Fatalf("SkillsWithQuestions failed: %v", err)
		}
		byName := make(map[string]int)
		for _, c := range counts {
			byName[c.Skill] = c.Questions
		}
		if byName["go"] != 2 || byName["sql"] != 1 {
			t.Errorf("Counts = %v, want go:2 sql:1", byName)
		}
	})

	t.Run("replace is wholesale", func(t *testing.T) {
		if _, err := db.ReplaceQuestionBank(ctx, testBank()[:1]); err != nil {
			t.Fatalf("ReplaceQuestionBank failed: %v", err)
		}
		questions, err := db.QuestionsBySkill(ctx, "sql")
		if err != nil {
			t.Fatalf("QuestionsBySkill failed: %v", err)
		}
		if len(questions) != 0 {
			t.Errorf("SQL questions should be gone after replace, got %d", len(questions))
		}
	})
}

// =============================================================================
// Assessment Attempt Integration Tests
// =============================================================================

func TestIntegration_Attempt_Lifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "Attempt Tester", testEmail())
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := db.ReplaceQuestionBank(ctx, testBank()); err != nil {
		t.Fatalf("ReplaceQuestionBank failed: %v", err)
	}

	attempt, err := db.CreateAttempt(ctx, &AttemptCreateInput{
		UserID:      user.ID,
		Skill:       "go",
		QuestionIDs: []string{"it-go-1", "it-go-2"},
		ChoiceOrders: map[string][]int{
			"it-go-1": {1, 0},
			"it-go-2": {0, 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateAttempt failed: %v", err)
	}
	if attempt.Status != AttemptStatusPending {
		t.Errorf("Status = %q, want 'pending'", attempt.Status)
	}
	if attempt.IsGraded() {
		t.Error("Fresh attempt should not be graded")
	}

	t.Run("round trip preserves shuffle state", func(t *testing.T) {
		got, err := db.GetAttempt(ctx, attempt.ID)
		if err != nil {
			t.Fatalf("GetAttempt failed: %v", err)
		}
		if got == nil {
			t.Fatal("Attempt not found")
		}
		if len(got.QuestionIDs) != 2 {
			t.Errorf("QuestionIDs = %v, want 2 entries", got.QuestionIDs)
		}
		order := got.ChoiceOrders["it-go-1"]
		if len(order) != 2 || order[0] != 1 || order[1] != 0 {
			t.Errorf("ChoiceOrders[it-go-1] = %v, want [1 0]", order)
		}
	})

	t.Run("complete grades once", func(t *testing.T) {
		result := assess.Result{Score: 1.0, Correct: 2, Total: 2, Passed: true}
		answers := map[string]int{"it-go-1": 0, "it-go-2": 0}

		graded, err := db.CompleteAttempt(ctx, attempt.ID, answers, result)
		if err != nil {
			t.Fatalf("CompleteAttempt failed: %v", err)
		}
		if !graded.IsGraded() {
			t.Error("Attempt should be graded")
		}
		if graded.Score == nil || *graded.Score != 1.0 {
			t.Errorf("Score = %v, want 1.0", graded.Score)
		}
		if graded.Passed == nil || !*graded.Passed {
			t.Errorf("Passed = %v, want true", graded.Passed)
		}
		if graded.CompletedAt == nil {
			t.Error("CompletedAt should be set")
		}

		if _, err := db.CompleteAttempt(ctx, attempt.ID, answers, result); err == nil {
			t.Error("Second completion should fail")
		}
	})

	t.Run("missing attempt returns nil", func(t *testing.T) {
		got, err := db.GetAttempt(ctx, uuid.New())
		if err != nil {
			t.Fatalf("GetAttempt failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing attempt, got %v", got)
		}
	})

	t.Run("list by user", func(t *testing.T) {
		attempts, err := db.ListAttemptsByUser(ctx, user.ID, 10)
		if err != nil {
			t.Fatalf("ListAttemptsByUser failed: %v", err)
		}
		if len(attempts) != 1 {
			t.Fatalf("Got %d attempts, want 1", len(attempts))
		}
		if attempts[0].ID != attempt.ID {
			t.Errorf("Attempt ID = %s, want %s", attempts[0].ID, attempt.ID)
		}
	})
}
