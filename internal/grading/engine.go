package grading

import (
	"math"
	"math/bits"
)

// DefaultPoints is the weight of a question whose points were never set.
const DefaultPoints = 1

// Choice is a minimal view of an option needed for grading.
type Choice struct {
	ID      string
	Correct bool
}

// Q is a minimal view of a question needed for grading.
// Keep this in sync with quiz.Question.
type Q struct {
	ID      string
	Points  *int
	Choices []Choice
}

func (q Q) points() int {
	if q.Points == nil {
		return DefaultPoints
	}
	if *q.Points < 0 {
		return 0
	}
	return *q.Points
}

// CorrectChoiceID resolves the single designated option for q: the first
// choice flagged correct, in authoring order.
func (q Q) CorrectChoiceID() (string, bool) {
	for _, c := range q.Choices {
		if c.Correct && c.ID != "" {
			return c.ID, true
		}
	}
	return "", false
}

// Result is the outcome of grading a whole submission.
type Result struct {
	ScoredPoints int `json:"scored_points"`
	TotalPoints  int `json:"total_points"`
	Percent      int `json:"percent"`
}

// Score grades answers (question id -> selected option id) against questions.
// Unanswered and wrong questions contribute zero. It never mutates its inputs.
func Score(questions []Q, answers map[string]string) Result {
	var res Result
	for _, q := range questions {
		pts := q.points()
		res.TotalPoints = addSat(res.TotalPoints, pts)
		if gradeSingle(q, answers) {
			res.ScoredPoints = addSat(res.ScoredPoints, pts)
		}
	}
	res.Percent = Percent(res.ScoredPoints, res.TotalPoints)
	return res
}

func gradeSingle(q Q, answers map[string]string) bool {
	if q.ID == "" {
		return false
	}
	selected, ok := answers[q.ID]
	if !ok {
		return false
	}
	correct, ok := q.CorrectChoiceID()
	return ok && selected == correct
}

// Percent is scored/total*100 rounded half up, or 0 when total is 0.
// The result is always within 0..100.
func Percent(scored, total int) int {
	if total <= 0 || scored <= 0 {
		return 0
	}
	if scored >= total {
		return 100
	}
	// floor((200*s + t) / 2t) == floor(((200*s + t) >> 1) / t), computed in 128 bits
	hi, lo := bits.Mul64(uint64(scored), 200)
	var carry uint64
	lo, carry = bits.Add64(lo, uint64(total), 0)
	hi += carry
	lo = lo>>1 | hi<<63
	hi >>= 1
	q, _ := bits.Div64(hi, lo, uint64(total))
	return int(q)
}

// addSat adds non-negative point values, stopping at math.MaxInt.
func addSat(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
