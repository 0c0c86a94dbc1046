package models

import (
	"time"
)

// QuestionBankRow is one row of the question_bank table.
type QuestionBankRow struct {
	Position  int       `db:"position"`
	Prompt    string    `db:"prompt"`
	Answer    string    `db:"answer"`
	ImageURL  string    `db:"image_url"`
	Level     int       `db:"level"`
	CreatedAt time.Time `db:"created_at"`
}
