package domain

import (
	"math"
	"time"
)

// Step is the phase of a quiz session.
type Step string

const (
	StepSetup   Step = "setup"
	StepPlaying Step = "playing"
	StepResult  Step = "result"
)

// Round results feed the profile engine once per finished session.
type RoundResult struct {
	SessionID   string        `json:"session_id"`
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Percent     int           `json:"percent"`
	MaxStreak   int           `json:"max_streak"`
	Wrong       []WrongAnswer `json:"wrong"`
	Answers     []Answer      `json:"answers"`
	TimerUsed   bool          `json:"timer_used"`
	Remaining   time.Duration `json:"-"`
	ReviewRound bool          `json:"review_round"`
}

// Perfect reports whether every question of a non-empty round was answered correctly.
func (r RoundResult) Perfect() bool {
	return r.Total > 0 && r.Score == r.Total
}

// NewRoundResult scores a finished round.
func NewRoundResult(quizLen int, answers []Answer) RoundResult {
	r := RoundResult{
		Total:   quizLen,
		Answers: answers,
		Wrong:   []WrongAnswer{},
	}
	for i, a := range answers {
		if a.IsCorrect() {
			r.Score++
			continue
		}
		r.Wrong = append(r.Wrong, WrongAnswer{
			Index:   i,
			Prompt:  a.Prompt,
			Correct: a.Correct,
			Picked:  a.Picked,
		})
	}
	r.Percent = Percent(r.Score, quizLen)
	r.MaxStreak = LongestStreak(answers)
	return r
}

// Percent returns round(100*part/whole), 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// LongestStreak returns the longest run of consecutive correct answers.
func LongestStreak(answers []Answer) int {
	longest, cur := 0, 0
	for _, a := range answers {
		if a.IsCorrect() {
			cur++
			if cur > longest {
				longest = cur
			}
		} else {
			cur = 0
		}
	}
	return longest
}
