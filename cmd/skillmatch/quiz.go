package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/marcus/skillmatch/internal/assess"
	"github.com/marcus/skillmatch/internal/catalog"
	"github.com/marcus/skillmatch/internal/skills"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a practice assessment in the terminal",
	Long:  "Run a multiple-choice practice assessment from a question bank file, without a server or database. Answers are graded locally with the same rules the API applies.",
	RunE:  runQuiz,
}

var (
	quizBankPath  string
	quizSkill     string
	quizQuestions int
)

func init() {
	quizCmd.Flags().StringVarP(&quizBankPath, "bank", "b", "", "Path to question bank JSON file (required)")
	quizCmd.Flags().StringVarP(&quizSkill, "skill", "s", "", "Skill to practice (required)")
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "n", 5, "Number of questions to draw")

	quizCmd.MarkFlagRequired("bank")
	quizCmd.MarkFlagRequired("skill")

	rootCmd.AddCommand(quizCmd)
}

func runQuiz(_ *cobra.Command, _ []string) error {
	bank, err := catalog.LoadQuestionBank(quizBankPath)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}

	want := skills.Normalize(quizSkill)
	pool := make([]assess.Question, 0)
	for _, q := range bank {
		if q.Skill == want {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return fmt.Errorf("no questions for skill %q in %s", quizSkill, quizBankPath)
	}

	byID := make(map[string]assess.Question, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	questions := assess.Shuffle(assess.Sample(pool, quizQuestions, rng), rng)

	orders := make(map[string][]int, len(questions))
	answers := make(map[string]int, len(questions))
	for i, q := range questions {
		orders[q.QuestionID] = q.Order

		prompt := promptui.Select{
			Label: fmt.Sprintf("Question %d of %d: %s", i+1, len(questions), q.Prompt),
			Items: q.Choices,
			Size:  len(q.Choices),
		}
		idx, _, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("quiz aborted: %w", err)
		}
		answers[q.QuestionID] = idx
	}

	graded := make([]assess.Question, 0, len(questions))
	for _, q := range questions {
		graded = append(graded, byID[q.QuestionID])
	}

	result := assess.Grade(graded, orders, answers)

	fmt.Fprintf(os.Stdout, "\nScore: %.0f%% (%d of %d correct)\n", result.Score*100, result.Correct, result.Total)
	if result.Passed {
		fmt.Fprintf(os.Stdout, "Passed. An attempt like this would verify %q on your profile.\n", want)
	} else {
		fmt.Fprintf(os.Stdout, "Not passed. %.0f%% is needed to verify a skill.\n", assess.PassThreshold*100)
	}
	return nil
}
