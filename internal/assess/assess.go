// Package assess grades multiple-choice skill assessments and decides
// when an attempt verifies a skill.
package assess

import "math/rand"

// PassThreshold is the minimum fraction of correct answers that turns an
// attempt into a verified skill.
const PassThreshold = 0.7

// Question is a bank entry for one skill. CorrectIndex points into
// Choices in their authored order and never leaves the server.
type Question struct {
	ID           string   `json:"id"`
	Skill        string   `json:"skill"`
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
}

// ShuffledQuestion is the candidate-facing view of a bank question: the
// choices are permuted and the correct index withheld. Order maps each
// displayed position back to the authored choice index and is persisted
// with the attempt so grading can undo the shuffle.
type ShuffledQuestion struct {
	QuestionID string   `json:"question_id"`
	Skill      string   `json:"skill"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices"`
	Order      []int    `json:"-"`
}

// Shuffle permutes the choices of every question independently using the
// supplied source. Callers seed the source per attempt; tests pass a
// fixed seed.
func Shuffle(questions []Question, rng *rand.Rand) []ShuffledQuestion {
	shuffled := make([]ShuffledQuestion, 0, len(questions))
	for _, q := range questions {
		order := rng.Perm(len(q.Choices))
		choices := make([]string, len(order))
		for pos, original := range order {
			choices[pos] = q.Choices[original]
		}
		shuffled = append(shuffled, ShuffledQuestion{
			QuestionID: q.ID,
			Skill:      q.Skill,
			Prompt:     q.Prompt,
			Choices:    choices,
			Order:      order,
		})
	}
	return shuffled
}

// Sample draws up to n questions from the bank without replacement, in
// random order. Asking for more than the bank holds returns the whole
// bank shuffled.
func Sample(bank []Question, n int, rng *rand.Rand) []Question {
	if n <= 0 {
		return []Question{}
	}
	if n > len(bank) {
		n = len(bank)
	}
	picked := make([]Question, 0, n)
	for _, idx := range rng.Perm(len(bank))[:n] {
		picked = append(picked, bank[idx])
	}
	return picked
}

// Result is the graded outcome of one attempt.
type Result struct {
	Score   float64 `json:"score"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Passed  bool    `json:"passed"`
}

// Grade maps each submitted answer back through the stored choice order
// and scores the attempt. Answers are keyed by question ID and give the
// displayed choice position. A missing answer or an out-of-range index
// counts as wrong; grading never fails on malformed input. An attempt
// with no questions scores 0 and does not pass.
func Grade(questions []Question, orders map[string][]int, answers map[string]int) Result {
	if len(questions) == 0 {
		return Result{}
	}

	correct := 0
	for _, q := range questions {
		order, ok := orders[q.ID]
		if !ok {
			continue
		}
		answer, ok := answers[q.ID]
		if !ok || answer < 0 || answer >= len(order) {
			continue
		}
		if order[answer] == q.CorrectIndex {
			correct++
		}
	}

	score := float64(correct) / float64(len(questions))
	return Result{
		Score:   score,
		Correct: correct,
		Total:   len(questions),
		Passed:  score >= PassThreshold,
	}
}
