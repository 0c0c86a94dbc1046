package domain

import (
	"strings"
)

// RequiredImportColumns and OptionalImportColumns name the canonical
// spreadsheet headers shown to users when an import is rejected.
var (
	RequiredImportColumns = []string{"zh", "en"}
	OptionalImportColumns = []string{"img", "level"}
)

// RawRecord is a loosely-typed question as it arrives from an import,
// the built-in bank or a database row. Level may be an int, a float,
// a numeric string or nil.
type RawRecord struct {
	Prompt   string
	Answer   string
	ImageURL string
	Level    interface{}
}

// QuestionRecord is a normalized word pair: a native-language prompt and
// the target-language answer.
type QuestionRecord struct {
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer"`
	ImageURL string `json:"image_url,omitempty"`
	Level    int    `json:"level"`
}

// RecordKey builds the dedup key for a prompt/answer pair.
func RecordKey(prompt, answer string) string {
	return strings.ToLower(prompt + "→" + answer)
}

// Validate rejects records that Normalize would have dropped.
func (q QuestionRecord) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return NewValidationError("prompt is required")
	}
	if strings.TrimSpace(q.Answer) == "" {
		return NewValidationError("answer is required")
	}
	if q.Level < 1 {
		return NewValidationError("level must be a positive integer")
	}
	return nil
}

// QuizQuestion is a record prepared for play: the options always contain
// the correct answer exactly once.
type QuizQuestion struct {
	QuestionRecord
	Options []string `json:"options"`
}

// Answer is the user's response to one question.
type Answer struct {
	Picked  string `json:"picked"`
	Correct string `json:"correct"`
	Prompt  string `json:"prompt"`
}

// IsCorrect reports whether the picked option matches the correct answer.
func (a Answer) IsCorrect() bool {
	return a.Picked == a.Correct
}

// WrongAnswer is a review row on the result screen. ImageURL is filled
// when images are enabled.
type WrongAnswer struct {
	Index    int    `json:"index"`
	Prompt   string `json:"prompt"`
	Correct  string `json:"correct"`
	Picked   string `json:"picked"`
	ImageURL string `json:"image_url,omitempty"`
}
